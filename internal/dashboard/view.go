package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quoteboard/internal/fetcher"
)

// NotAvailable is shown in place of a number that is unknown.
const NotAvailable = "N/A"

// Row is one formatted table line.
type Row struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
	// Gain is true when the change is zero or positive.
	Gain  bool   `json:"gain"`
	Error string `json:"error,omitempty"`
}

// Point is one sample of the price chart.
type Point struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// View is everything a rendering surface needs for one frame.
type View struct {
	Term      string          `json:"term"`
	Quotes    []fetcher.Quote `json:"quotes"`
	Rows      []Row           `json:"rows"`
	Chart     []Point         `json:"chart"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Filter returns the quotes whose symbol contains term, ignoring case, in
// their original order. An empty term returns quotes unchanged.
func Filter(quotes []fetcher.Quote, term string) []fetcher.Quote {
	if term == "" {
		return quotes
	}

	needle := strings.ToLower(term)
	out := make([]fetcher.Quote, 0, len(quotes))
	for _, q := range quotes {
		if strings.Contains(strings.ToLower(q.Symbol), needle) {
			out = append(out, q)
		}
	}
	return out
}

// FormatNumber renders v with exactly two decimals, or NotAvailable for nil,
// NaN and infinities.
func FormatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// Rows formats quotes for tabular display. The numbers of a failed quote are
// zero placeholders, so they are shown as unavailable.
func Rows(quotes []fetcher.Quote) []Row {
	rows := make([]Row, len(quotes))
	for i, q := range quotes {
		price, change, pct := &q.Price, &q.Change, &q.ChangePercent
		if q.HasError() {
			price, change, pct = nil, nil, nil
		}
		rows[i] = Row{
			Symbol:        q.Symbol,
			Price:         FormatNumber(price),
			Change:        FormatNumber(change),
			ChangePercent: FormatNumber(pct),
			Gain:          q.Change >= 0,
			Error:         q.Error,
		}
	}
	return rows
}

// Series returns the chart series for the whole batch, ignoring any filter.
func Series(batch fetcher.Batch) []Point {
	points := make([]Point, len(batch.Quotes))
	for i, q := range batch.Quotes {
		points[i] = Point{Symbol: q.Symbol, Price: q.Price}
	}
	return points
}

// Project derives the view of state for a search term.
func Project(state State, term string) View {
	filtered := Filter(state.Batch.Quotes, term)
	return View{
		Term:      term,
		Quotes:    filtered,
		Rows:      Rows(filtered),
		Chart:     Series(state.Batch),
		Error:     state.Error,
		UpdatedAt: state.Batch.FetchedAt,
	}
}
