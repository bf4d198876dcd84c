package testutil

import (
	"context"

	"quoteboard/internal/fetcher"
)

// MockSource is a mock implementation of the fetcher.Source interface for testing
type MockSource struct {
	QuoteFunc func(ctx context.Context, symbol string) (fetcher.Quote, error)
	NameFunc  func() string
}

// Quote implements the fetcher.Source interface
func (m *MockSource) Quote(ctx context.Context, symbol string) (fetcher.Quote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, symbol)
	}
	return fetcher.Quote{Symbol: symbol}, nil
}

// Name implements the fetcher.Source interface
func (m *MockSource) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// NewMockSource creates a mock source answering from fixed quotes and errors keyed by symbol.
// Symbols in neither map get a zero quote.
func NewMockSource(quotes map[string]fetcher.Quote, errs map[string]error) *MockSource {
	return &MockSource{
		QuoteFunc: func(ctx context.Context, symbol string) (fetcher.Quote, error) {
			if err, ok := errs[symbol]; ok {
				return fetcher.Quote{}, err
			}
			q := quotes[symbol]
			q.Symbol = symbol
			return q, nil
		},
	}
}
