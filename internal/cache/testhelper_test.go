// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/internal/query"
)

const (
	film1 = "https://swapi.dev/api/films/1/"
	film2 = "https://swapi.dev/api/films/2/"

	waitFor = 2 * time.Second
)

type reply struct {
	entities []query.Detail
	summary  query.Summary
	err      error
}

// invocation is one blocked fetch awaiting a reply from the test.
type invocation struct {
	film  string
	rel   query.Relation
	reply chan reply
}

// fakeFetcher either answers immediately (auto) or parks every call on the
// started channel until the test replies. Parked calls ignore cancellation,
// like a stalled query would.
type fakeFetcher struct {
	auto    bool
	started chan *invocation

	mu     sync.Mutex
	counts map[string]int
	fail   map[query.Relation]error
}

func newAutoFetcher() *fakeFetcher {
	return &fakeFetcher{auto: true, counts: map[string]int{}, fail: map[query.Relation]error{}}
}

func newBlockingFetcher() *fakeFetcher {
	return &fakeFetcher{started: make(chan *invocation, 64), counts: map[string]int{}, fail: map[query.Relation]error{}}
}

func countKey(film string, rel query.Relation) string {
	if rel == "" {
		return film + "|summary"
	}
	return film + "|" + string(rel)
}

func (f *fakeFetcher) record(film string, rel query.Relation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[countKey(film, rel)]++
	return f.fail[rel]
}

func (f *fakeFetcher) count(film string, rel query.Relation) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[countKey(film, rel)]
}

func (f *fakeFetcher) setFail(rel query.Relation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, rel)
		return
	}
	f.fail[rel] = err
}

func (f *fakeFetcher) Summary(_ context.Context, film string) (query.Summary, error) {
	err := f.record(film, "")
	if f.auto {
		return query.Summary{Film: film, Characters: 1}, err
	}
	r := f.park(film, "")
	return r.summary, r.err
}

func (f *fakeFetcher) Entities(_ context.Context, film string, rel query.Relation) ([]query.Detail, error) {
	err := f.record(film, rel)
	if f.auto {
		if err != nil {
			return nil, err
		}
		return []query.Detail{named(film + " " + string(rel))}, nil
	}
	r := f.park(film, rel)
	return r.entities, r.err
}

func (f *fakeFetcher) park(film string, rel query.Relation) reply {
	inv := &invocation{film: film, rel: rel, reply: make(chan reply, 1)}
	f.started <- inv
	return <-inv.reply
}

func nextInvocation(t *testing.T, f *fakeFetcher) *invocation {
	t.Helper()
	select {
	case inv := <-f.started:
		return inv
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a fetch to start")
		return nil
	}
}

func named(name string) query.Detail {
	return &query.PersonDetail{PersonInfo: query.PersonInfo{URL: name, Name: name}}
}

type result struct {
	entities []query.Detail
	err      error
}

func fetchAsync(c interface {
	Entities(context.Context, query.Relation, bool) ([]query.Detail, error)
}, rel query.Relation, force bool) <-chan result {
	ch := make(chan result, 1)
	go func() {
		entities, err := c.Entities(context.Background(), rel, force)
		ch <- result{entities: entities, err: err}
	}()
	return ch
}

func await(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for fetch result")
		return result{}
	}
}

func requireNoInvocation(t *testing.T, f *fakeFetcher) {
	t.Helper()
	select {
	case inv := <-f.started:
		t.Fatalf("unexpected fetch of %s %s", inv.film, inv.rel)
	case <-time.After(50 * time.Millisecond):
	}
}

func names(details []query.Detail) []string {
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.DisplayName())
	}
	return out
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, waitFor, 5*time.Millisecond, msg)
}
