package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"quoteboard/internal/fetcher"
	"quoteboard/internal/ratelimit"
)

// DefaultInterval is the time between scheduled refresh rounds.
const DefaultInterval = 5 * time.Minute

// ErrThrottled is returned by Refresh when a manual refresh came too soon
// after the previous one.
var ErrThrottled = errors.New("refresh requested too soon")

// ErrRoundInProgress is returned by Refresh while a round is already running.
var ErrRoundInProgress = errors.New("refresh round already in progress")

//go:generate mockgen -destination=mock_sink_test.go -package=coordinator . Sink

// Sink receives the outcome of each completed refresh round.
type Sink interface {
	PublishBatch(batch fetcher.Batch)
	FailRound(err error)
}

// Scheduler runs a refresh round on start and then once per interval.
type Scheduler struct {
	coord    *Coordinator
	sink     Sink
	interval time.Duration
	limiter  *ratelimit.Limiter

	trigger  chan struct{}
	finished chan struct{}
	inFlight atomic.Bool
}

// NewScheduler creates a scheduler. limiter gates Refresh; nil allows every request.
func NewScheduler(coord *Coordinator, sink Sink, interval time.Duration, limiter *ratelimit.Limiter) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if limiter == nil {
		limiter = ratelimit.New(0)
	}
	return &Scheduler{
		coord:    coord,
		sink:     sink,
		interval: interval,
		limiter:  limiter,
		trigger:  make(chan struct{}, 1),
		finished: make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done. It waits for a round still in flight, whose
// result is then discarded.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var wg conc.WaitGroup
	defer wg.Wait()

	slog.Info("scheduler started",
		"symbols", s.coord.Symbols(),
		"interval", s.interval.String())

	// pending holds an accepted manual request that raced with a running round.
	pending := false

	s.start(ctx, &wg, "startup")
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.start(ctx, &wg, "interval")
		case <-s.trigger:
			if !s.start(ctx, &wg, "manual") {
				pending = true
			}
		case <-s.finished:
			if pending && s.start(ctx, &wg, "manual") {
				pending = false
			}
		}
	}
}

// Refresh asks for an immediate round on behalf of trigger. It returns
// ErrRoundInProgress without spending the trigger's budget while a round is
// running, and ErrThrottled when the budget is spent.
func (s *Scheduler) Refresh(trigger ratelimit.Trigger) error {
	if s.inFlight.Load() {
		return ErrRoundInProgress
	}
	if !s.limiter.Allow(trigger) {
		return ErrThrottled
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return nil
}

// InFlight reports whether a round is currently running.
func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}

// start launches a round unless one is already running and reports whether it did.
func (s *Scheduler) start(ctx context.Context, wg *conc.WaitGroup, reason string) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		slog.Info("refresh round skipped, previous round still running", "reason", reason)
		return false
	}

	wg.Go(func() {
		defer func() {
			s.inFlight.Store(false)
			select {
			case s.finished <- struct{}{}:
			default:
			}
		}()
		s.round(ctx, reason)
	})
	return true
}

func (s *Scheduler) round(ctx context.Context, reason string) {
	started := time.Now()
	batch, err := s.coord.Run(ctx)

	if ctx.Err() != nil {
		slog.Debug("refresh round discarded after shutdown", "reason", reason)
		return
	}

	if err != nil {
		s.sink.FailRound(err)
		return
	}

	failed := 0
	for _, q := range batch.Quotes {
		if q.HasError() {
			failed++
		}
	}

	slog.Info("refresh round completed",
		"reason", reason,
		"quotes", len(batch.Quotes),
		"failed", failed,
		"duration", time.Since(started).String())
	s.sink.PublishBatch(batch)
}
