package fetcher

import "time"

// Quote is one symbol's price data at a point in time.
// Numeric fields are zero when the upstream did not report them or the fetch
// failed; Error is only set on failure.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Error         string  `json:"error,omitempty"`
}

// HasError reports whether the fetch for this quote failed.
func (q Quote) HasError() bool {
	return q.Error != ""
}

// Failed builds the quote returned for a symbol whose fetch did not succeed.
func Failed(symbol string, err error) Quote {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Quote{Symbol: symbol, Error: msg}
}

// Batch is the full set of quotes produced by one refresh round, one quote per
// tracked symbol in configured order.
type Batch struct {
	Quotes    []Quote   `json:"quotes"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Symbols returns the symbols of the batch in order.
func (b Batch) Symbols() []string {
	out := make([]string, len(b.Quotes))
	for i, q := range b.Quotes {
		out[i] = q.Symbol
	}
	return out
}
