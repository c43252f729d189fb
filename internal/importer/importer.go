// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package importer replaces the store's contents with a snapshot in a single
// transaction and announces the change afterwards.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Publisher receives the change batch of each committed import.
type Publisher interface {
	Publish(batch notify.ChangeBatch) error
}

// Report describes what one successful import wrote.
type Report struct {
	Entities   map[store.Kind]int  `json:"entities" doc:"Rows upserted per entity kind"`
	Pivots     map[string]int      `json:"pivots" doc:"Rows attached per pivot table"`
	Duplicates int                 `json:"duplicates_absorbed" doc:"Edges seen more than once and attached once"`
	Dangling   int                 `json:"dangling_skipped" doc:"References to identities absent from the snapshot"`
	Elapsed    time.Duration       `json:"elapsed_ns" doc:"Transaction wall time"`
	Batch      *notify.ChangeBatch `json:"batch,omitempty" doc:"Published change batch, absent for an empty snapshot"`
}

// Rows flattens entity and pivot counts keyed by table-ish name.
func (r *Report) Rows() map[string]int {
	rows := make(map[string]int, len(r.Entities)+len(r.Pivots))
	for k, n := range r.Entities {
		rows[string(k)] = n
	}
	for p, n := range r.Pivots {
		rows[p] = n
	}
	return rows
}

type Importer struct {
	store     store.EntityStore
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Importer)

func WithPublisher(p Publisher) Option {
	return func(i *Importer) { i.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) { i.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

func New(s store.EntityStore, opts ...Option) *Importer {
	i := &Importer{store: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import clears the store and reseeds it from snap. Pivots are cleared before
// entity tables. Relationship references to identities the snapshot does not
// contain are dropped. Every failure is an *Error and rolls back.
//
// After commit, one change batch naming the kinds whose input list was
// non-empty is published. An empty snapshot clears the store and publishes
// nothing.
func (i *Importer) Import(ctx context.Context, snap *snapshot.Snapshot) (*Report, error) {
	if err := validate(snap); err != nil {
		i.metrics.ObserveImport(false, 0, nil)
		return nil, &Error{Code: holoerr.CodeImportSnapshotInvalid, Err: err}
	}

	report := &Report{
		Entities: make(map[store.Kind]int, len(store.Kinds())),
		Pivots:   make(map[string]int, len(store.Pivots())),
	}
	start := time.Now()

	err := i.store.Update(ctx, func(tx store.Tx) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		ids := identities(snap)
		if err := upsertAll(ctx, tx, snap, ids, report); err != nil {
			return err
		}
		l := &linker{tx: tx, ids: ids, seen: make(map[pair]struct{}), report: report, logger: i.logger}
		return l.relinkAll(ctx, snap)
	})
	report.Elapsed = time.Since(start)
	if err != nil {
		i.metrics.ObserveImport(false, report.Elapsed, nil)
		i.logger.Error("snapshot import failed", slog.Any("error", err))
		return nil, &Error{Code: holoerr.CodeImportTransactionFailure, Err: err}
	}
	i.metrics.ObserveImport(true, report.Elapsed, report.Rows())

	i.logger.Info("snapshot imported",
		slog.Int("films", report.Entities[store.KindFilm]),
		slog.Int("people", report.Entities[store.KindPerson]),
		slog.Int("planets", report.Entities[store.KindPlanet]),
		slog.Int("species", report.Entities[store.KindSpecies]),
		slog.Int("starships", report.Entities[store.KindStarship]),
		slog.Int("vehicles", report.Entities[store.KindVehicle]),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("dangling", report.Dangling),
		slog.Duration("elapsed", report.Elapsed),
	)

	if kinds := touchedKinds(snap); len(kinds) > 0 {
		batch := notify.NewChangeBatch(kinds...)
		report.Batch = &batch
		if i.publisher != nil {
			// Publish failures do not undo the commit.
			if err := i.publisher.Publish(batch); err != nil {
				i.logger.Warn("publishing change batch", slog.String("batch", batch.ID.String()), slog.Any("error", err))
			}
		}
	}
	return report, nil
}

func clearAll(ctx context.Context, tx store.Tx) error {
	for _, p := range store.Pivots() {
		if err := tx.ClearPivot(ctx, p); err != nil {
			return err
		}
	}
	for _, k := range store.Kinds() {
		if err := tx.DeleteAll(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func upsertAll(ctx context.Context, tx store.Tx, snap *snapshot.Snapshot, ids identitySet, report *Report) error {
	upsert := func(rec store.Record) error {
		if err := tx.Upsert(ctx, rec); err != nil {
			return err
		}
		report.Entities[rec.Kind()]++
		return nil
	}

	for idx := range snap.Films {
		if err := upsert(filmRecord(&snap.Films[idx])); err != nil {
			return err
		}
	}
	for idx := range snap.Planets {
		if err := upsert(planetRecord(&snap.Planets[idx])); err != nil {
			return err
		}
	}
	for idx := range snap.People {
		src := &snap.People[idx]
		rec := personRecord(src)
		rec.HomeworldURL = ids.resolve(store.KindPlanet, src.Homeworld, report)
		if err := upsert(rec); err != nil {
			return err
		}
	}
	for idx := range snap.Species {
		src := &snap.Species[idx]
		rec := speciesRecord(src)
		rec.HomeworldURL = ids.resolve(store.KindPlanet, src.Homeworld, report)
		if err := upsert(rec); err != nil {
			return err
		}
	}
	for idx := range snap.Starships {
		if err := upsert(starshipRecord(&snap.Starships[idx])); err != nil {
			return err
		}
	}
	for idx := range snap.Vehicles {
		if err := upsert(vehicleRecord(&snap.Vehicles[idx])); err != nil {
			return err
		}
	}
	return nil
}

func touchedKinds(snap *snapshot.Snapshot) []store.Kind {
	var kinds []store.Kind
	add := func(n int, k store.Kind) {
		if n > 0 {
			kinds = append(kinds, k)
		}
	}
	add(len(snap.Films), store.KindFilm)
	add(len(snap.People), store.KindPerson)
	add(len(snap.Planets), store.KindPlanet)
	add(len(snap.Species), store.KindSpecies)
	add(len(snap.Starships), store.KindStarship)
	add(len(snap.Vehicles), store.KindVehicle)
	return kinds
}

// identitySet holds the URLs each kind contributes to the snapshot.
type identitySet map[store.Kind]map[string]bool

func identities(snap *snapshot.Snapshot) identitySet {
	ids := make(identitySet, len(store.Kinds()))
	add := func(k store.Kind, url string) {
		if ids[k] == nil {
			ids[k] = make(map[string]bool)
		}
		ids[k][url] = true
	}
	for _, f := range snap.Films {
		add(store.KindFilm, f.URL)
	}
	for _, p := range snap.People {
		add(store.KindPerson, p.URL)
	}
	for _, p := range snap.Planets {
		add(store.KindPlanet, p.URL)
	}
	for _, s := range snap.Species {
		add(store.KindSpecies, s.URL)
	}
	for _, s := range snap.Starships {
		add(store.KindStarship, s.URL)
	}
	for _, v := range snap.Vehicles {
		add(store.KindVehicle, v.URL)
	}
	return ids
}

// resolve returns url when it names a kind identity in the snapshot and ""
// otherwise.
func (ids identitySet) resolve(kind store.Kind, url string, report *Report) string {
	if url == "" {
		return ""
	}
	if !ids[kind][url] {
		report.Dangling++
		return ""
	}
	return url
}

func validate(snap *snapshot.Snapshot) error {
	if snap == nil {
		return holoerr.New(holoerr.CodeImportSnapshotInvalid, "snapshot is nil")
	}

	var errs []error
	check := func(kind store.Kind, idx int, url string, seen map[string]int) {
		if url == "" {
			errs = append(errs, holoerr.New(holoerr.CodeImportSnapshotInvalid,
				fmt.Sprintf("%s[%d] has no url", kind, idx), holoerr.FieldKind(string(kind))))
			return
		}
		if first, dup := seen[url]; dup {
			errs = append(errs, holoerr.New(holoerr.CodeImportSnapshotInvalid,
				fmt.Sprintf("%s[%d] repeats url of %s[%d]", kind, idx, kind, first),
				holoerr.FieldKind(string(kind)), holoerr.FieldURL(url)))
			return
		}
		seen[url] = idx
	}

	seen := func() map[string]int { return make(map[string]int) }
	films, people, planets, species, starships, vehicles := seen(), seen(), seen(), seen(), seen(), seen()
	for idx, r := range snap.Films {
		check(store.KindFilm, idx, r.URL, films)
	}
	for idx, r := range snap.People {
		check(store.KindPerson, idx, r.URL, people)
	}
	for idx, r := range snap.Planets {
		check(store.KindPlanet, idx, r.URL, planets)
	}
	for idx, r := range snap.Species {
		check(store.KindSpecies, idx, r.URL, species)
	}
	for idx, r := range snap.Starships {
		check(store.KindStarship, idx, r.URL, starships)
	}
	for idx, r := range snap.Vehicles {
		check(store.KindVehicle, idx, r.URL, vehicles)
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return holoerr.Wrap(errors.Join(errs...), holoerr.CodeImportSnapshotInvalid, "invalid snapshot")
	}
}
