// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package importer_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
	"github.com/holocron-dev/holocron/internal/store/sqlite"
)

const (
	film1    = "https://swapi.dev/api/films/1/"
	film2    = "https://swapi.dev/api/films/2/"
	person1  = "https://swapi.dev/api/people/1/"
	person2  = "https://swapi.dev/api/people/2/"
	planet1  = "https://swapi.dev/api/planets/1/"
	species1 = "https://swapi.dev/api/species/1/"
	ship1    = "https://swapi.dev/api/starships/12/"
	vehicle1 = "https://swapi.dev/api/vehicles/14/"
	missing  = "https://swapi.dev/api/planets/404/"
)

func openStore(t *testing.T) *sqlite.EntityStore {
	t.Helper()
	s, err := sqlite.NewEntityStore(filepath.Join(t.TempDir(), "holocron.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// scenarioSnapshot is F1 with character P1 (homeworld W1) and starship S1
// piloted by P1. Several edges are declared from both endpoints.
func scenarioSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Films: []snapshot.Film{{
			URL:         film1,
			Title:       "A New Hope",
			EpisodeID:   4,
			ReleaseDate: "1977-05-25",
			Characters:  []string{person1},
			Planets:     []string{planet1},
			Starships:   []string{ship1},
			Species:     []string{species1},
			Vehicles:    []string{vehicle1},
		}},
		People: []snapshot.Person{{
			URL:       person1,
			Name:      "Luke Skywalker",
			Height:    "172",
			Mass:      "77",
			Gender:    "male",
			Homeworld: planet1,
			Films:     []string{film1},
			Species:   []string{species1},
			Starships: []string{ship1},
			Vehicles:  []string{vehicle1},
		}},
		Planets: []snapshot.Planet{{
			URL:        planet1,
			Name:       "Tatooine",
			Population: "200000",
			Diameter:   "10465",
			Residents:  []string{person1},
			Films:      []string{film1},
		}},
		Species: []snapshot.Species{{
			URL:             species1,
			Name:            "Human",
			AverageHeight:   "180",
			AverageLifespan: "120",
			Homeworld:       missing,
			People:          []string{person1},
			Films:           []string{film1},
		}},
		Starships: []snapshot.Starship{{
			URL:              ship1,
			Name:             "X-wing",
			Model:            "T-65 X-wing",
			CostInCredits:    "149999",
			Length:           "12.5",
			HyperdriveRating: "1.0",
			Pilots:           []string{person1},
			Films:            []string{film1},
		}},
		Vehicles: []snapshot.Vehicle{{
			URL:   vehicle1,
			Name:  "Snowspeeder",
			Films: []string{film1},
		}},
	}
}

type counts struct {
	entities map[store.Kind]int
	pivots   map[string]int
}

func countAll(t *testing.T, r store.Reader) counts {
	t.Helper()
	ctx := context.Background()
	c := counts{entities: map[store.Kind]int{}, pivots: map[string]int{}}
	for _, k := range store.Kinds() {
		n, err := r.Count(ctx, k)
		require.NoError(t, err)
		c.entities[k] = n
	}
	for _, p := range store.Pivots() {
		n, err := r.PivotCount(ctx, p)
		require.NoError(t, err)
		c.pivots[p.Name] = n
	}
	return c
}

type recordingPublisher struct {
	mu      sync.Mutex
	batches []notify.ChangeBatch
	err     error
}

func (p *recordingPublisher) Publish(b notify.ChangeBatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, b)
	return p.err
}

func (p *recordingPublisher) published() []notify.ChangeBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.ChangeBatch(nil), p.batches...)
}

var errInjected = errors.New("injected attach failure")

// faultyStore fails every AttachPivot on pivot.
type faultyStore struct {
	store.EntityStore
	pivot store.Pivot
}

func (s *faultyStore) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.EntityStore.Update(ctx, func(tx store.Tx) error {
		return fn(&faultyTx{Tx: tx, pivot: s.pivot})
	})
}

type faultyTx struct {
	store.Tx
	pivot store.Pivot
}

func (tx *faultyTx) AttachPivot(ctx context.Context, p store.Pivot, a, b string) error {
	if p == tx.pivot {
		return errInjected
	}
	return tx.Tx.AttachPivot(ctx, p, a, b)
}
