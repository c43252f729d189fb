// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package importer

import (
	"context"
	"log/slog"

	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
)

// pair is an edge in its pivot's canonical (A, B) orientation, so the same
// edge discovered from either endpoint yields the same key.
type pair struct {
	pivot string
	a, b  string
}

// linker attaches many-to-many edges for one import transaction.
type linker struct {
	tx     store.Tx
	ids    identitySet
	seen   map[pair]struct{}
	report *Report
	logger *slog.Logger
}

func (l *linker) relinkAll(ctx context.Context, snap *snapshot.Snapshot) error {
	type edges struct {
		pivot   store.Pivot
		targets []string
	}
	link := func(from store.Kind, url string, lists ...edges) error {
		for _, e := range lists {
			if err := l.link(ctx, e.pivot, from, url, e.targets); err != nil {
				return err
			}
		}
		return nil
	}

	for _, f := range snap.Films {
		if err := link(store.KindFilm, f.URL,
			edges{store.PivotFilmCharacters, f.Characters},
			edges{store.PivotFilmPlanets, f.Planets},
			edges{store.PivotFilmSpecies, f.Species},
			edges{store.PivotFilmStarships, f.Starships},
			edges{store.PivotFilmVehicles, f.Vehicles},
		); err != nil {
			return err
		}
	}
	for _, p := range snap.People {
		if err := link(store.KindPerson, p.URL,
			edges{store.PivotFilmCharacters, p.Films},
			edges{store.PivotPersonSpecies, p.Species},
			edges{store.PivotPersonStarships, p.Starships},
			edges{store.PivotPersonVehicles, p.Vehicles},
		); err != nil {
			return err
		}
	}
	for _, p := range snap.Planets {
		if err := link(store.KindPlanet, p.URL, edges{store.PivotFilmPlanets, p.Films}); err != nil {
			return err
		}
	}
	for _, s := range snap.Species {
		if err := link(store.KindSpecies, s.URL,
			edges{store.PivotFilmSpecies, s.Films},
			edges{store.PivotPersonSpecies, s.People},
		); err != nil {
			return err
		}
	}
	for _, s := range snap.Starships {
		if err := link(store.KindStarship, s.URL,
			edges{store.PivotFilmStarships, s.Films},
			edges{store.PivotPersonStarships, s.Pilots},
		); err != nil {
			return err
		}
	}
	for _, v := range snap.Vehicles {
		if err := link(store.KindVehicle, v.URL,
			edges{store.PivotFilmVehicles, v.Films},
			edges{store.PivotPersonVehicles, v.Pilots},
		); err != nil {
			return err
		}
	}
	return nil
}

// link attaches (from, target) for every target present in the snapshot.
// Each edge is attached on first sight only.
func (l *linker) link(ctx context.Context, p store.Pivot, from store.Kind, fromURL string, targets []string) error {
	to, _ := p.Other(from)
	for _, target := range targets {
		if !l.ids[to][target] {
			l.report.Dangling++
			l.logger.Debug("skipping dangling reference",
				slog.String("pivot", p.Name),
				slog.String("from", fromURL),
				slog.String("to", target),
			)
			continue
		}

		a, b := fromURL, target
		if from != p.A {
			a, b = target, fromURL
		}
		key := pair{pivot: p.Name, a: a, b: b}
		if _, dup := l.seen[key]; dup {
			l.report.Duplicates++
			continue
		}
		l.seen[key] = struct{}{}

		if err := l.tx.AttachPivot(ctx, p, a, b); err != nil {
			return err
		}
		l.report.Pivots[p.Name]++
	}
	return nil
}
