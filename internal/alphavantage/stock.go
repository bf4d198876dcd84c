package alphavantage

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"quoteboard/internal/fetcher"
)

// DefaultBaseURL is the AlphaVantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// GlobalQuoteResponse represents the AlphaVantage API response for stock quotes
type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`

	// AlphaVantage reports failures with a 200 status and one of these fields.
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (r *GlobalQuoteResponse) upstreamError() string {
	for _, msg := range []string{r.ErrorMessage, r.Note, r.Information} {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return ""
}

// StockClient fetches stock quotes from AlphaVantage
type StockClient struct {
	apiKey string
	client *resty.Client
}

// NewStockClient creates a new stock quote client
func NewStockClient(apiKey, baseURL string, timeout time.Duration) *StockClient {
	return &StockClient{
		apiKey: apiKey,
		client: fetcher.NewHTTPClient(baseURL, timeout),
	}
}

// Name implements fetcher.Source
func (c *StockClient) Name() string {
	return "alphavantage"
}

// Quote retrieves the current quote for ticker
func (c *StockClient) Quote(ctx context.Context, ticker string) (fetcher.Quote, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   c.apiKey,
			"function": "GLOBAL_QUOTE",
			"symbol":   ticker,
		}).
		Get("")

	if err != nil {
		return fetcher.Quote{}, fetcher.ClassifyTransportError(err)
	}

	if !resp.IsSuccess() {
		return fetcher.Quote{}, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	var result GlobalQuoteResponse
	if err := fetcher.DecodeJSON(resp, &result); err != nil {
		return fetcher.Quote{}, err
	}

	if msg := result.upstreamError(); msg != "" {
		return fetcher.Quote{}, fetcher.NewUpstreamError(0, msg)
	}

	gq := result.GlobalQuote
	price, err := parseField("price", gq.Price)
	if err != nil {
		return fetcher.Quote{}, err
	}
	if price < 0 {
		return fetcher.Quote{}, fetcher.NewValidationError(fmt.Sprintf("negative price %v for %s", price, ticker))
	}
	change, err := parseField("change", gq.Change)
	if err != nil {
		return fetcher.Quote{}, err
	}
	changePercent, err := parseField("change percent", strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"))
	if err != nil {
		return fetcher.Quote{}, err
	}

	return fetcher.Quote{
		Symbol:        ticker,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
	}, nil
}

// parseField converts an AlphaVantage numeric string, treating an absent value
// as zero. NaN and infinities are rejected.
func parseField(name, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fetcher.NewValidationError(fmt.Sprintf("failed to parse %s %q", name, raw))
	}
	return v, nil
}
