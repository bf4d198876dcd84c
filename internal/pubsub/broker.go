package pubsub

import (
	"sync"
)

// Subscriber receives values published to a Broker on C.
// C is closed when the subscriber is removed or the broker is closed.
type Subscriber[T any] struct {
	ID string
	C  chan T
}

// Broker fans values out to subscribers without ever blocking the publisher.
// A subscriber that falls behind loses its oldest pending value, so it always
// converges on the most recent one.
type Broker[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber[T]
	closed      bool
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subscribers: make(map[string]*Subscriber[T]),
	}
}

// Subscribe registers a subscriber under id. An existing subscriber with the
// same id is replaced and its channel closed.
func (b *Broker[T]) Subscribe(id string, bufferSize int) *Subscriber[T] {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscriber[T]{ID: id, C: make(chan T, bufferSize)}
	if b.closed {
		close(sub.C)
		return sub
	}

	if existing, ok := b.subscribers[id]; ok {
		close(existing.C)
	}
	b.subscribers[id] = sub
	return sub
}

// Unsubscribe removes the subscriber with id and closes its channel.
func (b *Broker[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.C)
		delete(b.subscribers, id)
	}
}

// Publish delivers v to every subscriber.
func (b *Broker[T]) Publish(v T) {
	// Write lock: the drop-oldest step must not interleave with another publish
	// to the same channel.
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, sub := range b.subscribers {
		select {
		case sub.C <- v:
			continue
		default:
		}

		select {
		case <-sub.C:
		default:
		}

		select {
		case sub.C <- v:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close removes all subscribers. Later publishes are dropped.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, sub := range b.subscribers {
		close(sub.C)
		delete(b.subscribers, id)
	}
}
