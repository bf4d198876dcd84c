package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"

	"quoteboard/internal/fetcher"
)

// ErrNoSymbols is returned when a coordinator has nothing to fetch.
var ErrNoSymbols = errors.New("no symbols configured")

// Coordinator runs refresh rounds: one concurrent fetch per tracked symbol,
// collected into a Batch in configured order.
type Coordinator struct {
	source         fetcher.Source
	symbols        []string
	timeout        time.Duration
	maxConcurrency int
	now            func() time.Time

	// fetch runs inside the fan-out for each symbol.
	fetch func(ctx context.Context, symbol string) fetcher.Quote
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRequestTimeout bounds each per-symbol request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// WithMaxConcurrency caps the number of in-flight requests in a round.
// Zero or less means one goroutine per symbol.
func WithMaxConcurrency(n int) Option {
	return func(c *Coordinator) { c.maxConcurrency = n }
}

// WithClock overrides the time source used to stamp batches.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a new Coordinator fetching symbols from source
func New(source fetcher.Source, symbols []string, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:  source,
		symbols: append([]string(nil), symbols...),
		timeout: fetcher.DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fetch = func(ctx context.Context, symbol string) fetcher.Quote {
		return fetcher.FetchQuote(ctx, c.source, symbol, c.timeout)
	}
	return c
}

// Symbols returns the tracked symbols in order.
func (c *Coordinator) Symbols() []string {
	return append([]string(nil), c.symbols...)
}

// Run executes one refresh round.
//
// Each symbol is fetched in its own goroutine and writes only its own slot, so
// the batch is in configured order whatever the completion order. Per-symbol
// failures, panicking sources included, end up in the quote's Error field and
// never fail the round. An error is returned only when the round as a whole
// could not be assembled: the fan-out itself panicked, or ctx ended before the
// batch was complete.
func (c *Coordinator) Run(ctx context.Context) (fetcher.Batch, error) {
	if len(c.symbols) == 0 {
		return fetcher.Batch{}, ErrNoSymbols
	}

	workers := c.maxConcurrency
	if workers <= 0 || workers > len(c.symbols) {
		workers = len(c.symbols)
	}
	mapper := iter.Mapper[string, fetcher.Quote]{MaxGoroutines: workers}

	var quotes []fetcher.Quote
	recovered := panics.Try(func() {
		quotes = mapper.Map(c.symbols, func(symbol *string) fetcher.Quote {
			return c.fetch(ctx, *symbol)
		})
	})
	if recovered != nil {
		// conc re-panics with the worker's *panics.Recovered; report the original value.
		for {
			inner, ok := recovered.Value.(*panics.Recovered)
			if !ok || inner == nil {
				break
			}
			recovered = inner
		}
		slog.Debug("refresh round panic", "stack", string(recovered.Stack))
		return fetcher.Batch{}, fmt.Errorf("refresh round panicked: %v", recovered.Value)
	}

	if err := ctx.Err(); err != nil {
		return fetcher.Batch{}, fmt.Errorf("refresh round abandoned: %w", err)
	}

	if len(quotes) != len(c.symbols) {
		return fetcher.Batch{}, fmt.Errorf("refresh round: got %d quotes for %d symbols", len(quotes), len(c.symbols))
	}

	return fetcher.Batch{Quotes: quotes, FetchedAt: c.now()}, nil
}
