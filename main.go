package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc"

	"quoteboard/internal/alphavantage"
	"quoteboard/internal/config"
	"quoteboard/internal/coordinator"
	"quoteboard/internal/dashboard"
	"quoteboard/internal/fetcher"
	"quoteboard/internal/finnhub"
	"quoteboard/internal/ratelimit"
	"quoteboard/internal/server"
	"quoteboard/internal/tui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logOut, closeLog, err := logOutput(cfg)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	// Cancel on interrupt for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("quoteboard exited", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// run wires the quote source, the refresh scheduler, the dashboard and its
// surfaces, and blocks until ctx is cancelled or the terminal UI exits.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	coord := coordinator.New(source, cfg.StockSymbols,
		coordinator.WithRequestTimeout(cfg.RequestTimeout),
		coordinator.WithMaxConcurrency(cfg.MaxConcurrency),
	)
	board := dashboard.New(nil)
	defer board.Close()

	scheduler := coordinator.NewScheduler(coord, board, cfg.RefreshInterval, ratelimit.New(cfg.ManualRefreshInterval))

	slog.Info("starting quoteboard",
		"provider", source.Name(),
		"symbols", strings.Join(coord.Symbols(), ","),
		"interval", cfg.RefreshInterval,
		"ui", cfg.UI,
	)

	var wg conc.WaitGroup
	defer wg.Wait()

	wg.Go(func() { scheduler.Run(ctx) })

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.New(board, scheduler).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Go(func() {
			slog.Info("http api listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http api stopped", "error", err)
				cancel()
			}
		})
		wg.Go(func() {
			<-ctx.Done()
			// Closing the board first ends open websocket streams.
			board.Close()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http api shutdown", "error", err)
			}
		})
	}

	if cfg.UI == config.UIHeadless {
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	sub := board.Broker().Subscribe("tui", 1)
	program := tea.NewProgram(tui.New(board, scheduler, sub.C), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	cancel()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

// newSource builds the quote source for the configured provider.
func newSource(cfg *config.Config) (fetcher.Source, error) {
	switch cfg.Provider {
	case config.ProviderFinnhub:
		return finnhub.NewClient(cfg.APIKey(), cfg.FinnhubBaseURL, cfg.RequestTimeout), nil
	case config.ProviderAlphaVantage:
		return alphavantage.NewStockClient(cfg.APIKey(), cfg.AlphavantageBaseURL, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// logOutput returns where logs go: stderr when headless, otherwise the log
// file, since the terminal belongs to the UI.
func logOutput(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.UI == config.UIHeadless {
		return os.Stderr, func() {}, nil
	}
	if cfg.LogFile == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
