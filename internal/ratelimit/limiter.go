package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Trigger identifies who asked for an out-of-band refresh.
type Trigger string

const (
	// TriggerTerminal is a refresh requested from the terminal dashboard
	TriggerTerminal Trigger = "terminal"
	// TriggerHTTP is a refresh requested through the HTTP API
	TriggerHTTP Trigger = "http"
)

// Limiter gates manual refresh requests so a user cannot stack rounds faster
// than once per interval. Each trigger has its own budget, and all triggers
// share a global one.
type Limiter struct {
	every    time.Duration
	global   *rate.Limiter
	limiters map[Trigger]*rate.Limiter
	mu       sync.Mutex
}

// New returns a limiter allowing one request per interval. A non-positive
// interval disables limiting.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		every:    interval,
		global:   newLimiter(interval),
		limiters: make(map[Trigger]*rate.Limiter),
	}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Allow reports whether a refresh requested by trigger may happen now
func (l *Limiter) Allow(trigger Trigger) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[trigger]
	if !exists {
		limiter = newLimiter(l.every)
		l.limiters[trigger] = limiter
	}

	now := time.Now()
	reservation, ok := reserve(limiter, now)
	if !ok {
		return false
	}
	if _, ok := reserve(l.global, now); !ok {
		// Hand the trigger's token back; nothing ran.
		reservation.CancelAt(now)
		return false
	}
	return true
}

// reserve takes a token only if one is available immediately.
func reserve(limiter *rate.Limiter, now time.Time) (*rate.Reservation, bool) {
	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return nil, false
	}
	if r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return r, true
}
