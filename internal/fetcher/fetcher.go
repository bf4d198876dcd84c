package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Source is one upstream quote provider.
type Source interface {
	// Quote issues a single request for symbol and returns the normalized quote.
	// Implementations return a *FetchError describing any failure.
	Quote(ctx context.Context, symbol string) (Quote, error)

	// Name identifies the upstream in logs, e.g. "finnhub".
	Name() string
}

// FetchQuote fetches one symbol from src and never fails: any error, including
// a panic inside src, is folded into the returned quote with all numerics at
// zero. A positive timeout bounds the upstream call.
func FetchQuote(ctx context.Context, src Source, symbol string, timeout time.Duration) Quote {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		q   Quote
		err error
	)
	if recovered := panics.Try(func() { q, err = src.Quote(ctx, symbol) }); recovered != nil {
		slog.Debug("quote source panic", "symbol", symbol, "stack", string(recovered.Stack))
		err = NewPanicError(recovered.Value)
	}
	if err != nil {
		slog.Warn("quote fetch failed",
			"source", src.Name(),
			"symbol", symbol,
			"error", err.Error())
		return Failed(symbol, err)
	}

	q.Symbol = symbol
	q.Error = ""
	return q
}
