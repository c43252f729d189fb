// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/notify"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Subscriber hands out change subscriptions. *notify.Broker implements it.
type Subscriber interface {
	Subscribe() (*notify.Subscription, error)
}

type view struct {
	cache  *Cache
	sub    *notify.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

// Pool manages one Cache per view ID. Every view watches its own change
// subscription, so closing a view leaves the others subscribed.
type Pool struct {
	fetcher    Fetcher
	subscriber Subscriber
	logger     *slog.Logger
	metrics    *metrics.Metrics
	opts       []Option

	mu     sync.Mutex
	views  map[uuid.UUID]*view
	closed bool
}

func NewPool(f Fetcher, s Subscriber, opts ...Option) *Pool {
	o := buildOptions(opts)
	return &Pool{
		fetcher:    f,
		subscriber: s,
		logger:     o.logger,
		metrics:    o.metrics,
		opts:       opts,
		views:      make(map[uuid.UUID]*view),
	}
}

// Open creates a view with a fresh ID and starts invalidating it from its own
// subscription.
func (p *Pool) Open() (uuid.UUID, *Cache, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return uuid.Nil, nil, holoerr.New(holoerr.CodeCacheClosed, "view pool is closed")
	}

	sub, err := p.subscriber.Subscribe()
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	v := &view{
		cache:  New(p.fetcher, p.opts...),
		sub:    sub,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.views[id] = v

	go func() {
		defer close(v.done)
		if err := v.cache.Watch(ctx, sub); err != nil && ctx.Err() == nil {
			p.logger.Warn("view watch ended", slog.String("view", id.String()), slog.Any("error", err))
		}
	}()

	p.logger.Debug("view opened", slog.String("view", id.String()))
	return id, v.cache, nil
}

// Get returns the cache of view id.
func (p *Pool) Get(id uuid.UUID) (*Cache, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.views[id]
	if !ok {
		return nil, holoerr.New(holoerr.CodeCacheViewNotFound, "view not found", holoerr.FieldViewID(id.String()))
	}
	return v.cache, nil
}

// Close detaches view id from the change stream and cancels its fetches.
func (p *Pool) Close(id uuid.UUID) error {
	p.mu.Lock()
	v, ok := p.views[id]
	delete(p.views, id)
	p.mu.Unlock()

	if !ok {
		return holoerr.New(holoerr.CodeCacheViewNotFound, "view not found", holoerr.FieldViewID(id.String()))
	}
	p.shutdown(v)
	p.logger.Debug("view closed", slog.String("view", id.String()))
	return nil
}

// Len returns the number of open views.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

// Shutdown closes every view. Later Open calls fail.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	views := p.views
	p.views = make(map[uuid.UUID]*view)
	p.closed = true
	p.mu.Unlock()

	for _, v := range views {
		p.shutdown(v)
	}
}

func (p *Pool) shutdown(v *view) {
	v.sub.Close()
	v.cancel()
	v.cache.Close()
	<-v.done
}
