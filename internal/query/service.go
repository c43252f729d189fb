// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package query answers read-only relationship questions about films:
// summary counts and hydrated detail listings.
package query

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// DefaultWorkers bounds concurrent hydration of one listing.
const DefaultWorkers = 4

// Service implements the relationship queries over a store.Reader. It never
// writes and is safe for concurrent use.
type Service struct {
	reader  store.Reader
	workers int
	logger  *slog.Logger
}

type Option func(*Service)

// WithWorkers sets the hydration parallelism. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(r store.Reader, opts ...Option) *Service {
	s := &Service{reader: r, workers: DefaultWorkers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// on returns a copy of s that reads through r.
func (s *Service) on(r store.Reader) *Service {
	c := *s
	c.reader = r
	return &c
}

// Summary returns the five relationship counts of filmURL, each a direct
// pivot count. All five are read from one store snapshot.
func (s *Service) Summary(ctx context.Context, filmURL string) (Summary, error) {
	var sum Summary
	err := s.reader.View(ctx, func(r store.Reader) error {
		v := s.on(r)
		if _, err := v.film(ctx, filmURL); err != nil {
			return err
		}
		var err error
		sum, err = v.counts(ctx, filmURL)
		return err
	})
	return sum, err
}

func (s *Service) counts(ctx context.Context, filmURL string) (Summary, error) {
	sum := Summary{Film: filmURL}
	for _, rel := range Relations() {
		n, err := s.reader.CountRelated(ctx, rel.Pivot(), store.KindFilm, filmURL)
		if err != nil {
			return Summary{}, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "counting %s of %s", rel, filmURL)
		}
		sum.set(rel, n)
	}
	return sum, nil
}

// Entities lists the rel neighbours of filmURL, each hydrated with its own
// first-order relationships, sorted by display name case-insensitively. The
// listing and its hydration share one store snapshot.
func (s *Service) Entities(ctx context.Context, filmURL string, rel Relation) ([]Detail, error) {
	if !rel.Valid() {
		return nil, holoerr.New(holoerr.CodeQueryRelationInvalid, "unknown relation "+string(rel), holoerr.FieldRelation(string(rel)))
	}
	var out []Detail
	err := s.reader.View(ctx, func(r store.Reader) error {
		var err error
		out, err = s.on(r).entities(ctx, filmURL, rel)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("relationship hydrated",
		slog.String("film", filmURL),
		slog.String("relation", string(rel)),
		slog.Int("entities", len(out)),
	)
	return out, nil
}

func (s *Service) entities(ctx context.Context, filmURL string, rel Relation) ([]Detail, error) {
	if _, err := s.film(ctx, filmURL); err != nil {
		return nil, err
	}

	urls, err := s.reader.Related(ctx, rel.Pivot(), store.KindFilm, filmURL)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "listing %s of %s", rel, filmURL)
	}

	details := make([]Detail, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, url := range urls {
		g.Go(func() error {
			d, err := s.hydrate(gctx, rel.Kind(), url)
			if err != nil {
				return err
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A pivot row can name an entity with no stored row; skip it.
	out := details[:0]
	for _, d := range details {
		if d != nil {
			out = append(out, d)
		}
	}
	sortDetails(out)
	return out, nil
}

// Films returns every film with its relationship counts, in film order.
func (s *Service) Films(ctx context.Context) ([]*FilmDetail, error) {
	var out []*FilmDetail
	err := s.reader.View(ctx, func(r store.Reader) error {
		var err error
		out, err = s.on(r).allFilms(ctx)
		return err
	})
	return out, err
}

func (s *Service) allFilms(ctx context.Context) ([]*FilmDetail, error) {
	recs, err := s.reader.List(ctx, store.KindFilm)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "listing films")
	}
	out := make([]*FilmDetail, 0, len(recs))
	for _, rec := range recs {
		f, ok := rec.(*store.Film)
		if !ok {
			continue
		}
		d, err := s.filmDetail(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sortFilmDetails(out)
	return out, nil
}

// Film returns one film with its relationship counts.
func (s *Service) Film(ctx context.Context, filmURL string) (*FilmDetail, error) {
	var out *FilmDetail
	err := s.reader.View(ctx, func(r store.Reader) error {
		v := s.on(r)
		f, err := v.film(ctx, filmURL)
		if err != nil {
			return err
		}
		out, err = v.filmDetail(ctx, f)
		return err
	})
	return out, err
}

func (s *Service) filmDetail(ctx context.Context, f *store.Film) (*FilmDetail, error) {
	counts, err := s.counts(ctx, f.URL)
	if err != nil {
		return nil, err
	}
	return &FilmDetail{FilmInfo: filmInfo(f), OpeningCrawl: f.OpeningCrawl, Counts: counts}, nil
}

func (s *Service) film(ctx context.Context, filmURL string) (*store.Film, error) {
	rec, err := s.reader.Find(ctx, store.KindFilm, filmURL)
	if store.IsNotFound(err) {
		return nil, holoerr.New(holoerr.CodeQueryFilmNotFound, "film not found: "+filmURL, holoerr.FieldURL(filmURL))
	}
	if err != nil {
		return nil, err
	}
	f, ok := rec.(*store.Film)
	if !ok {
		return nil, holoerr.New(holoerr.CodeQueryHydrationFailure, "unexpected record for film "+filmURL)
	}
	return f, nil
}
