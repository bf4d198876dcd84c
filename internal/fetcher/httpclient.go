package fetcher

import (
	"bytes"
	"encoding/json"
	"time"

	"resty.dev/v3"
)

// DefaultTimeout bounds a single upstream request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient creates the HTTP client shared by the quote sources.
// Requests are never retried; a failed symbol waits for the next refresh round.
func NewHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)
}

// DecodeJSON decodes the response body into v whatever Content-Type the
// upstream declared. An empty or non-JSON body is a validation error.
func DecodeJSON(resp *resty.Response, v any) error {
	body := bytes.TrimSpace(resp.Bytes())
	if len(body) == 0 {
		return NewValidationError("empty response payload")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FetchError{
			Type:    ErrorTypeValidation,
			Message: "malformed response payload",
			Cause:   err,
		}
	}
	return nil
}
