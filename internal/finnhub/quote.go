package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"quoteboard/internal/fetcher"
)

// DefaultBaseURL is the Finnhub REST API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// QuoteResponse represents the Finnhub /quote payload.
// Numeric fields are pointers because Finnhub sends null for symbols it has
// no data for.
type QuoteResponse struct {
	Current       *float64 `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          *float64 `json:"h"`
	Low           *float64 `json:"l"`
	Open          *float64 `json:"o"`
	PreviousClose *float64 `json:"pc"`
	Timestamp     int64    `json:"t"`
	Error         string   `json:"error"`
}

// Client fetches quotes from Finnhub
type Client struct {
	apiKey string
	client *resty.Client
}

// NewClient creates a Finnhub quote client. timeout bounds each request.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		client: fetcher.NewHTTPClient(baseURL, timeout),
	}
}

// Name implements fetcher.Source
func (c *Client) Name() string {
	return "finnhub"
}

// Quote retrieves the current quote for symbol
func (c *Client) Quote(ctx context.Context, symbol string) (fetcher.Quote, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  c.apiKey,
		}).
		Get("/quote")

	if err != nil {
		return fetcher.Quote{}, fetcher.ClassifyTransportError(err)
	}

	// Finnhub sends JSON for errors too, but proxies in front of it may not,
	// so the body is decoded regardless of the declared Content-Type.
	var result QuoteResponse
	decodeErr := fetcher.DecodeJSON(resp, &result)

	if !resp.IsSuccess() {
		if msg := strings.TrimSpace(result.Error); decodeErr == nil && msg != "" {
			return fetcher.Quote{}, fetcher.NewUpstreamError(resp.StatusCode(), msg)
		}
		return fetcher.Quote{}, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	if decodeErr != nil {
		return fetcher.Quote{}, decodeErr
	}

	if msg := strings.TrimSpace(result.Error); msg != "" {
		return fetcher.Quote{}, fetcher.NewUpstreamError(0, msg)
	}

	if result.Current != nil && *result.Current < 0 {
		return fetcher.Quote{}, fetcher.NewValidationError(fmt.Sprintf("negative price %v for %s", *result.Current, symbol))
	}

	return fetcher.Quote{
		Symbol:        symbol,
		Price:         valueOrZero(result.Current),
		Change:        valueOrZero(result.Change),
		ChangePercent: valueOrZero(result.ChangePercent),
	}, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
