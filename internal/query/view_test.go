// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package query_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
	"github.com/holocron-dev/holocron/internal/store/sqlite"
)

// interleavedStore commits next on the underlying store right after the
// first relationship read made inside a view, while that view is still open.
type interleavedStore struct {
	*sqlite.EntityStore
	t    *testing.T
	next *snapshot.Snapshot
	once sync.Once
}

func (s *interleavedStore) View(ctx context.Context, fn func(r store.Reader) error) error {
	return s.EntityStore.View(ctx, func(r store.Reader) error {
		return fn(&interleavedReader{Reader: r, s: s})
	})
}

func (s *interleavedStore) commit(ctx context.Context) {
	s.once.Do(func() {
		_, err := importer.New(s.EntityStore).Import(ctx, s.next)
		assert.NoError(s.t, err)
	})
}

type interleavedReader struct {
	store.Reader
	s *interleavedStore
}

func (r *interleavedReader) View(_ context.Context, fn func(r store.Reader) error) error {
	return fn(r)
}

func (r *interleavedReader) CountRelated(ctx context.Context, p store.Pivot, from store.Kind, url string) (int, error) {
	n, err := r.Reader.CountRelated(ctx, p, from, url)
	r.s.commit(ctx)
	return n, err
}

func (r *interleavedReader) Related(ctx context.Context, p store.Pivot, from store.Kind, url string) ([]string, error) {
	urls, err := r.Reader.Related(ctx, p, from, url)
	r.s.commit(ctx)
	return urls, err
}

func TestSummary_ImportCommittedMidReadIsInvisible(t *testing.T) {
	ctx := context.Background()
	st := &interleavedStore{
		EntityStore: seed(t, &snapshot.Snapshot{
			Films:  []snapshot.Film{{URL: f1, Title: "A New Hope", Characters: []string{p1}}},
			People: []snapshot.Person{{URL: p1, Name: "Luke Skywalker"}},
		}),
		t: t,
		next: &snapshot.Snapshot{
			Films: []snapshot.Film{{URL: f1, Title: "A New Hope", Planets: []string{w1, w2}}},
			Planets: []snapshot.Planet{
				{URL: w1, Name: "Tatooine"},
				{URL: w2, Name: "Alderaan"},
			},
		},
	}
	svc := query.New(st)

	sum, err := svc.Summary(ctx, f1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Characters, "counts come from the state the read started on")
	assert.Zero(t, sum.Planets)

	sum, err = svc.Summary(ctx, f1)
	require.NoError(t, err)
	assert.Zero(t, sum.Characters)
	assert.Equal(t, 2, sum.Planets, "the next read sees the committed import")
}

func TestEntities_ImportCommittedMidReadIsInvisible(t *testing.T) {
	ctx := context.Background()
	st := &interleavedStore{
		EntityStore: seed(t, &snapshot.Snapshot{
			Films: []snapshot.Film{{URL: f1, Title: "A New Hope", Characters: []string{p1, p2}}},
			People: []snapshot.Person{
				{URL: p1, Name: "Luke Skywalker", Homeworld: w1},
				{URL: p2, Name: "C-3PO"},
			},
			Planets: []snapshot.Planet{{URL: w1, Name: "Tatooine"}},
		}),
		t: t,
		next: &snapshot.Snapshot{
			Films: []snapshot.Film{{URL: f1, Title: "A New Hope"}},
		},
	}
	svc := query.New(st, query.WithWorkers(2))

	details, err := svc.Entities(ctx, f1, query.RelationCharacters)
	require.NoError(t, err)
	require.Len(t, details, 2, "hydration does not lose rows cleared by the concurrent import")
	luke, ok := details[1].(*query.PersonDetail)
	require.True(t, ok)
	require.NotNil(t, luke.Homeworld)
	assert.Equal(t, "Tatooine", luke.Homeworld.Name)

	details, err = svc.Entities(ctx, f1, query.RelationCharacters)
	require.NoError(t, err)
	assert.Empty(t, details)
}
