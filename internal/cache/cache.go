// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package cache coordinates relationship fetches for one selected film at a
// time. Each relation has a slot that moves through idle, loading, loaded and
// failed; concurrent requests for the same key share one underlying fetch.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/query"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Fetcher is the query surface the cache coordinates. *query.Service
// implements it.
type Fetcher interface {
	Summary(ctx context.Context, filmURL string) (query.Summary, error)
	Entities(ctx context.Context, filmURL string, rel query.Relation) ([]query.Detail, error)
}

// State is the lifecycle position of one slot.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// summaryRel keys the summary alongside the relation slots.
const summaryRel query.Relation = ""

type key struct {
	film string
	rel  query.Relation
}

func (k key) label() string {
	if k.rel == summaryRel {
		return "summary"
	}
	return string(k.rel)
}

type slot struct {
	state    State
	entities []query.Detail
	summary  query.Summary
	message  string
}

// call is one underlying fetch. Its result fields are written once, under
// the owning Cache's mutex, before done is closed.
type call struct {
	key      key
	done     chan struct{}
	cancel   context.CancelFunc
	finished bool

	entities []query.Detail
	summary  query.Summary
	err      error
}

func (cl *call) wait(ctx context.Context) ([]query.Detail, query.Summary, error) {
	select {
	case <-cl.done:
		return cl.entities, cl.summary, cl.err
	case <-ctx.Done():
		return nil, query.Summary{}, ctx.Err()
	}
}

// Cache is one selection context. All slot and in-flight state is guarded by
// mu; fetches run on their own goroutines outside it.
type Cache struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics

	base       context.Context
	cancelBase context.CancelFunc

	mu        sync.Mutex
	closed    bool
	film      string
	slots     map[query.Relation]*slot
	summary   *slot
	inflight  map[key]*call
	results   map[string]map[query.Relation][]query.Detail
	summaries map[string]query.Summary
}

type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func New(f Fetcher, opts ...Option) *Cache {
	o := buildOptions(opts)
	base, cancel := context.WithCancel(context.Background())
	c := &Cache{
		fetcher:    f,
		logger:     o.logger,
		metrics:    o.metrics,
		base:       base,
		cancelBase: cancel,
		summary:    &slot{state: StateIdle},
		inflight:   make(map[key]*call),
		results:    make(map[string]map[query.Relation][]query.Detail),
		summaries:  make(map[string]query.Summary),
	}
	c.slots = idleSlots()
	return c
}

func idleSlots() map[query.Relation]*slot {
	slots := make(map[query.Relation]*slot, len(query.Relations()))
	for _, rel := range query.Relations() {
		slots[rel] = &slot{state: StateIdle}
	}
	return slots
}

// Film returns the selected film, or "" before the first Select.
func (c *Cache) Film() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.film
}

// Select makes filmURL the current parent. In-flight fetches for the previous
// film are cancelled and their waiters receive a cancelled FetchError. Slots
// are reset to idle, or to loaded where a result for filmURL is cached.
// Selecting the current film again is a no-op.
func (c *Cache) Select(filmURL string) error {
	if filmURL == "" {
		return holoerr.New(holoerr.CodeCacheSelectionInvalid, "film url is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed()
	}
	if filmURL == c.film {
		return nil
	}

	for _, cl := range c.inflight {
		c.supersedeLocked(cl, "selection changed")
	}

	prev := c.film
	c.film = filmURL
	c.slots = idleSlots()
	for rel, entities := range c.results[filmURL] {
		c.slots[rel] = &slot{state: StateLoaded, entities: entities}
	}
	c.summary = &slot{state: StateIdle}
	if sum, ok := c.summaries[filmURL]; ok {
		c.summary = &slot{state: StateLoaded, summary: sum}
	}

	c.logger.Debug("selection changed", slog.String("from", prev), slog.String("to", filmURL))
	return nil
}

// Entities returns the rel listing of the selected film. A loaded slot is
// served from cache unless force is set. A request that finds the key already
// loading joins that fetch; a forced request cancels it and starts anew.
func (c *Cache) Entities(ctx context.Context, rel query.Relation, force bool) ([]query.Detail, error) {
	_, entities, err := c.Listing(ctx, rel, force)
	return entities, err
}

// Listing is Entities that also reports the film the entities belong to,
// which is the film selected when the call was made.
func (c *Cache) Listing(ctx context.Context, rel query.Relation, force bool) (string, []query.Detail, error) {
	if !rel.Valid() {
		return "", nil, holoerr.New(holoerr.CodeQueryRelationInvalid, "unknown relation "+string(rel), holoerr.FieldRelation(string(rel)))
	}

	c.mu.Lock()
	film := c.film
	cl, cached, err := c.acquireLocked(rel, force)
	c.mu.Unlock()
	if err != nil {
		return "", nil, err
	}
	if cl == nil {
		return film, cached.entities, nil
	}
	entities, _, err := cl.wait(ctx)
	if err != nil {
		return "", nil, err
	}
	return film, entities, nil
}

// Summary returns the relationship counts of the selected film with the same
// coordination as Entities.
func (c *Cache) Summary(ctx context.Context, force bool) (query.Summary, error) {
	c.mu.Lock()
	cl, cached, err := c.acquireLocked(summaryRel, force)
	c.mu.Unlock()
	if err != nil {
		return query.Summary{}, err
	}
	if cl == nil {
		return cached.summary, nil
	}
	_, sum, err := cl.wait(ctx)
	return sum, err
}

// acquireLocked returns either the cached slot to serve or the call to wait
// on, starting one when needed.
func (c *Cache) acquireLocked(rel query.Relation, force bool) (*call, *slot, error) {
	if c.closed {
		return nil, nil, errClosed()
	}
	if c.film == "" {
		return nil, nil, holoerr.New(holoerr.CodeCacheSelectionInvalid, "no film selected")
	}

	k := key{film: c.film, rel: rel}
	sl := c.slotLocked(rel)
	existing := c.inflight[k]

	if !force {
		if sl.state == StateLoaded {
			return nil, sl, nil
		}
		if existing != nil {
			return existing, nil, nil
		}
	} else if existing != nil {
		c.supersedeLocked(existing, "forced reload")
	}
	return c.startLocked(k), nil, nil
}

func (c *Cache) slotLocked(rel query.Relation) *slot {
	if rel == summaryRel {
		return c.summary
	}
	return c.slots[rel]
}

// startLocked spawns the fetch for k and marks its slot loading.
func (c *Cache) startLocked(k key) *call {
	ctx, cancel := context.WithCancel(c.base)
	cl := &call{key: k, done: make(chan struct{}), cancel: cancel}
	c.inflight[k] = cl
	c.slotLocked(k.rel).state = StateLoading

	go c.run(ctx, cl)
	return cl
}

// supersedeLocked cancels cl and settles its waiters with a cancelled error.
// Whatever cl's goroutine later returns is discarded.
func (c *Cache) supersedeLocked(cl *call, reason string) {
	cl.cancel()
	if c.inflight[cl.key] == cl {
		delete(c.inflight, cl.key)
	}
	c.finishLocked(cl, nil, query.Summary{}, &FetchError{
		Code:     holoerr.CodeCacheFetchCancelled,
		Film:     cl.key.film,
		Relation: cl.key.rel,
		Err:      holoerr.New(holoerr.CodeCacheFetchCancelled, reason, holoerr.FieldURL(cl.key.film)),
	})
}

func (c *Cache) finishLocked(cl *call, entities []query.Detail, sum query.Summary, err error) {
	if cl.finished {
		return
	}
	cl.finished = true
	cl.entities, cl.summary, cl.err = entities, sum, err
	close(cl.done)
}

func (c *Cache) run(ctx context.Context, cl *call) {
	start := time.Now()
	entities, sum, err := c.fetch(ctx, cl.key)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cl.finished || c.inflight[cl.key] != cl {
		c.metrics.ObserveFetch(cl.key.label(), metrics.ResultCancelled, elapsed)
		return
	}
	delete(c.inflight, cl.key)
	cl.cancel()

	sl := c.slotLocked(cl.key.rel)
	if err != nil {
		ferr := &FetchError{Code: holoerr.CodeCacheFetchFailure, Film: cl.key.film, Relation: cl.key.rel, Err: err}
		sl.state = StateFailed
		sl.message = err.Error()
		sl.entities = nil
		c.forgetLocked(cl.key)
		c.metrics.ObserveFetch(cl.key.label(), metrics.ResultError, elapsed)
		c.logger.Warn("relationship fetch failed",
			slog.String("film", cl.key.film),
			slog.String("relation", cl.key.label()),
			slog.Any("error", err),
		)
		c.finishLocked(cl, nil, query.Summary{}, ferr)
		return
	}

	sl.state = StateLoaded
	sl.message = ""
	sl.entities = entities
	sl.summary = sum
	c.rememberLocked(cl.key, entities, sum)
	c.metrics.ObserveFetch(cl.key.label(), metrics.ResultSuccess, elapsed)
	c.finishLocked(cl, entities, sum, nil)
}

// fetch runs one underlying query, converting a panic into an error.
func (c *Cache) fetch(ctx context.Context, k key) (entities []query.Detail, sum query.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("relationship fetch panic recovered",
				slog.String("film", k.film),
				slog.String("relation", k.label()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = holoerr.Errorf(holoerr.CodeCacheFetchFailure, "fetch panic: %v", r)
		}
	}()

	if k.rel == summaryRel {
		sum, err = c.fetcher.Summary(ctx, k.film)
		return nil, sum, err
	}
	entities, err = c.fetcher.Entities(ctx, k.film, k.rel)
	return entities, query.Summary{}, err
}

func (c *Cache) rememberLocked(k key, entities []query.Detail, sum query.Summary) {
	if k.rel == summaryRel {
		c.summaries[k.film] = sum
		return
	}
	if c.results[k.film] == nil {
		c.results[k.film] = make(map[query.Relation][]query.Detail)
	}
	c.results[k.film][k.rel] = entities
}

func (c *Cache) forgetLocked(k key) {
	if k.rel == summaryRel {
		delete(c.summaries, k.film)
		return
	}
	delete(c.results[k.film], k.rel)
}

// Invalidate reacts to a change batch: the summary is always refreshed and
// every relation currently loaded is re-fetched. Idle, failed and loading
// slots are left alone. Cached results for films other than the selected one
// are dropped. Invalidate waits for the refreshes it started; their failures
// land in the slots, not in the returned error.
func (c *Cache) Invalidate(ctx context.Context, batch notify.ChangeBatch) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errClosed()
	}

	for film := range c.results {
		if film != c.film {
			delete(c.results, film)
		}
	}
	for film := range c.summaries {
		if film != c.film {
			delete(c.summaries, film)
		}
	}

	var calls []*call
	if c.film != "" {
		if existing := c.inflight[key{film: c.film, rel: summaryRel}]; existing != nil {
			c.supersedeLocked(existing, "invalidated")
		}
		calls = append(calls, c.startLocked(key{film: c.film, rel: summaryRel}))
		for _, rel := range query.Relations() {
			if c.slots[rel].state == StateLoaded {
				calls = append(calls, c.startLocked(key{film: c.film, rel: rel}))
			}
		}
	}
	film := c.film
	c.mu.Unlock()

	c.logger.Debug("cache invalidated",
		slog.String("batch", batch.ID.String()),
		slog.String("film", film),
		slog.Int("refreshes", len(calls)),
	)

	for _, cl := range calls {
		if _, _, err := cl.wait(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// Subscription is the receive side of a change stream.
type Subscription interface {
	C() <-chan notify.ChangeBatch
}

// Watch invalidates the cache for every batch received on sub until sub is
// closed, ctx ends or the cache is closed.
func (c *Cache) Watch(ctx context.Context, sub Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := c.Invalidate(ctx, batch); err != nil {
				if holoerr.HasCode(err, holoerr.CodeCacheClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// SlotStatus is a point-in-time copy of one slot.
type SlotStatus struct {
	Relation query.Relation `json:"relation"`
	State    State          `json:"state"`
	Entities []query.Detail `json:"-"`
	Error    string         `json:"error,omitempty"`
}

// Status is a point-in-time copy of the whole cache.
type Status struct {
	Film         string         `json:"film"`
	SummaryState State          `json:"summary_state"`
	Summary      *query.Summary `json:"summary,omitempty"`
	SummaryError string         `json:"summary_error,omitempty"`
	Slots        []SlotStatus   `json:"slots"`
}

// Slots returns the relation slots in query.Relations order. Entities are
// only set for loaded slots.
func (c *Cache) Slots() []SlotStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slotsLocked()
}

func (c *Cache) slotsLocked() []SlotStatus {
	out := make([]SlotStatus, 0, len(c.slots))
	for _, rel := range query.Relations() {
		sl := c.slots[rel]
		st := SlotStatus{Relation: rel, State: sl.state}
		switch sl.state {
		case StateLoaded:
			st.Entities = sl.entities
		case StateFailed:
			st.Error = sl.message
		}
		out = append(out, st)
	}
	return out
}

// Status returns the selected film, the summary slot and every relation slot.
func (c *Cache) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{Film: c.film, SummaryState: c.summary.state, Slots: c.slotsLocked()}
	switch c.summary.state {
	case StateLoaded:
		sum := c.summary.summary
		st.Summary = &sum
	case StateFailed:
		st.SummaryError = c.summary.message
	}
	return st
}

// Close cancels every in-flight fetch. Later calls fail with a closed error.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, cl := range c.inflight {
		c.supersedeLocked(cl, "cache closed")
	}
	c.cancelBase()
}

func errClosed() error {
	return holoerr.New(holoerr.CodeCacheClosed, "cache is closed")
}

// FetchError reports a relationship fetch that did not produce a result.
// Code is holoerr.CodeCacheFetchFailure when the query failed and
// holoerr.CodeCacheFetchCancelled when the call was superseded.
type FetchError struct {
	Code     holoerr.Code
	Film     string
	Relation query.Relation
	Err      error
}

func (e *FetchError) Error() string {
	target := string(e.Relation)
	if e.Relation == summaryRel {
		target = "summary"
	}
	return fmt.Sprintf("%s: %s of %s: %v", e.Code, target, e.Film, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cancelled reports whether the fetch was superseded rather than failed.
func (e *FetchError) Cancelled() bool {
	return e.Code == holoerr.CodeCacheFetchCancelled
}
