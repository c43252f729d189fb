// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package notify fans out post-commit change batches to independent
// subscribers.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// ChangeBatch names the entity kinds touched by one committed import.
type ChangeBatch struct {
	ID    uuid.UUID    `json:"id"`
	Kinds []store.Kind `json:"kinds"`
	At    time.Time    `json:"at"`
}

// NewChangeBatch builds a batch with a fresh ID. Kinds are deduplicated and
// kept in store.Kinds order.
func NewChangeBatch(kinds ...store.Kind) ChangeBatch {
	seen := make(map[store.Kind]bool, len(kinds))
	for _, k := range kinds {
		seen[k] = true
	}
	ordered := make([]store.Kind, 0, len(seen))
	for _, k := range store.Kinds() {
		if seen[k] {
			ordered = append(ordered, k)
		}
	}
	return ChangeBatch{ID: uuid.New(), Kinds: ordered, At: time.Now().UTC()}
}

// Has reports whether the batch names kind.
func (b ChangeBatch) Has(kind store.Kind) bool {
	for _, k := range b.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Broker is a multi-subscriber broadcast. Publish never blocks on a
// subscriber: each subscription buffers in its own queue.
type Broker struct {
	mu      sync.Mutex
	subs    map[uint64]*Subscription
	nextID  uint64
	closed  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Broker)

func WithLogger(l *slog.Logger) Option {
	return func(b *Broker) { b.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Broker) { b.metrics = m }
}

func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subs:   make(map[uint64]*Subscription),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new independent subscription.
func (b *Broker) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, holoerr.New(holoerr.CodeNotifyBrokerClosed, "subscribe on closed broker")
	}

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		broker: b,
		out:    make(chan ChangeBatch),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	b.subs[sub.id] = sub
	go sub.pump()

	b.metrics.SubscriberAdded()
	b.logger.Debug("change subscription opened", slog.Uint64("subscription", sub.id))
	return sub, nil
}

// Publish delivers batch to every open subscription.
func (b *Broker) Publish(batch ChangeBatch) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return holoerr.New(holoerr.CodeNotifyBrokerClosed, "publish on closed broker")
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.enqueue(batch)
	}

	b.metrics.BatchPublished()
	b.logger.Debug("change batch published",
		slog.String("batch", batch.ID.String()),
		slog.Int("kinds", len(batch.Kinds)),
		slog.Int("subscribers", len(subs)),
	)
	return nil
}

// Subscribers returns the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later Publish and Subscribe calls fail.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	_, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()

	if ok {
		b.metrics.SubscriberRemoved()
		b.logger.Debug("change subscription closed", slog.Uint64("subscription", id))
	}
}

// Subscription is one receiver's view of the broker.
type Subscription struct {
	id     uint64
	broker *Broker

	mu    sync.Mutex
	queue []ChangeBatch

	out       chan ChangeBatch
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// C yields batches in publish order. It is closed once the subscription is
// closed, either directly or by the broker shutting down.
func (s *Subscription) C() <-chan ChangeBatch {
	return s.out
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches this subscription only. Pending batches are discarded.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.broker.remove(s.id)
	})
}

func (s *Subscription) enqueue(batch ChangeBatch) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	s.queue = append(s.queue, batch)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		s.queue[0] = ChangeBatch{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}
