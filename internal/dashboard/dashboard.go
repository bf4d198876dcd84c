package dashboard

import (
	"log/slog"
	"sync"

	"quoteboard/internal/fetcher"
	"quoteboard/internal/pubsub"
)

// RoundFailedMessage is the banner shown when a whole refresh round failed.
const RoundFailedMessage = "Failed to fetch stock data. Please try again later."

// State is a snapshot of the dashboard.
type State struct {
	Batch fetcher.Batch
	Term  string
	Error string
}

// View projects the snapshot with its own search term.
func (s State) View() View {
	return Project(s, s.Term)
}

// Dashboard owns the current batch, the search term and the banner error.
// Every change is broadcast as a State on the broker.
type Dashboard struct {
	broker *pubsub.Broker[State]

	mu     sync.RWMutex
	state  State
	closed bool
}

// New creates a dashboard publishing on broker. A nil broker gets a fresh one.
func New(broker *pubsub.Broker[State]) *Dashboard {
	if broker == nil {
		broker = pubsub.NewBroker[State]()
	}
	return &Dashboard{broker: broker}
}

// Broker returns the broker changes are published on.
func (d *Dashboard) Broker() *pubsub.Broker[State] {
	return d.broker
}

// PublishBatch replaces the current batch and clears the banner.
func (d *Dashboard) PublishBatch(batch fetcher.Batch) {
	d.update(func(s *State) {
		s.Batch = batch
		s.Error = ""
	})
}

// FailRound keeps the current batch and raises the banner.
func (d *Dashboard) FailRound(err error) {
	slog.Error("refresh round failed", "error", err)
	d.update(func(s *State) {
		s.Error = RoundFailedMessage
	})
}

// SetSearchTerm records the terminal search term.
func (d *Dashboard) SetSearchTerm(term string) {
	d.update(func(s *State) {
		s.Term = term
	})
}

// State returns a snapshot of the current state.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Close stops the dashboard from accepting updates and releases subscribers.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.broker.Close()
}

func (d *Dashboard) update(fn func(*State)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	fn(&d.state)
	// Publish never blocks, so holding the lock keeps snapshots in order.
	d.broker.Publish(d.state)
}
