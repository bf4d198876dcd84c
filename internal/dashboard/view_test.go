package dashboard

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quoteboard/internal/fetcher"
)

func scenarioBatch() fetcher.Batch {
	return fetcher.Batch{
		Quotes: []fetcher.Quote{
			{Symbol: "AAPL", Price: 150.1234, Change: 1.5, ChangePercent: 1.0},
			{Symbol: "GOOGL", Error: "network error: network request failed"},
		},
		FetchedAt: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func ptr(v float64) *float64 { return &v }

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"integer", ptr(3), "3.00"},
		{"negative", ptr(-1.5), "-1.50"},
		{"nil", nil, "N/A"},
		{"rounds", ptr(150.1234), "150.12"},
		{"zero", ptr(0), "0.00"},
		{"large", ptr(123456.789), "123456.79"},
		{"NaN", ptr(math.NaN()), "N/A"},
		{"positive infinity", ptr(math.Inf(1)), "N/A"},
		{"negative infinity", ptr(math.Inf(-1)), "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestFilter_EmptyTermReturnsBatchUnchanged(t *testing.T) {
	quotes := scenarioBatch().Quotes
	assert.Equal(t, quotes, Filter(quotes, ""))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	quotes := scenarioBatch().Quotes

	lower := Filter(quotes, "aapl")
	upper := Filter(quotes, "AAPL")

	assert.Equal(t, lower, upper)
	assert.Len(t, lower, 1)
	assert.Equal(t, "AAPL", lower[0].Symbol)
}

func TestFilter_Substring(t *testing.T) {
	got := Filter(scenarioBatch().Quotes, "go")
	assert.Len(t, got, 1)
	assert.Equal(t, "GOOGL", got[0].Symbol)
}

func TestFilter_Idempotent(t *testing.T) {
	quotes := []fetcher.Quote{{Symbol: "AAPL"}, {Symbol: "AMZN"}, {Symbol: "MSFT"}, {Symbol: "META"}}

	for _, term := range []string{"", "a", "M", "zz", "aM"} {
		once := Filter(quotes, term)
		assert.Equal(t, once, Filter(once, term), "term %q", term)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	quotes := []fetcher.Quote{{Symbol: "MSFT"}, {Symbol: "AMZN"}, {Symbol: "META"}}
	got := Filter(quotes, "m")
	assert.Equal(t, []string{"MSFT", "AMZN", "META"}, fetcher.Batch{Quotes: got}.Symbols())
}

func TestRows(t *testing.T) {
	rows := Rows(scenarioBatch().Quotes)

	assert.Equal(t, []Row{
		{Symbol: "AAPL", Price: "150.12", Change: "1.50", ChangePercent: "1.00", Gain: true},
		{Symbol: "GOOGL", Price: "N/A", Change: "N/A", ChangePercent: "N/A", Gain: true, Error: "network error: network request failed"},
	}, rows)
}

func TestRows_Loss(t *testing.T) {
	rows := Rows([]fetcher.Quote{{Symbol: "MSFT", Price: 10, Change: -0.25, ChangePercent: -2.44}})
	assert.False(t, rows[0].Gain)
	assert.Equal(t, "-0.25", rows[0].Change)
}

func TestSeries_IgnoresFilter(t *testing.T) {
	state := State{Batch: scenarioBatch()}
	view := Project(state, "go")

	assert.Len(t, view.Quotes, 1)
	assert.Equal(t, []Point{{Symbol: "AAPL", Price: 150.1234}, {Symbol: "GOOGL", Price: 0}}, view.Chart)
	assert.Equal(t, state.Batch.FetchedAt, view.UpdatedAt)
	assert.Equal(t, "go", view.Term)
}

func TestRows_NonFiniteNumbers(t *testing.T) {
	rows := Rows([]fetcher.Quote{{Symbol: "AAPL", Price: math.NaN(), Change: math.Inf(1), ChangePercent: 1}})

	assert.Equal(t, "N/A", rows[0].Price)
	assert.Equal(t, "N/A", rows[0].Change)
	assert.Equal(t, "1.00", rows[0].ChangePercent)
}
