// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	filmURL    = "https://swapi.dev/api/films/1/"
	lukeURL    = "https://swapi.dev/api/people/1/"
	leiaURL    = "https://swapi.dev/api/people/5/"
	tatooine   = "https://swapi.dev/api/planets/1/"
	xwingURL   = "https://swapi.dev/api/starships/12/"
	humanURL   = "https://swapi.dev/api/species/1/"
	speederURL = "https://swapi.dev/api/vehicles/14/"
)

func TestEntityStore_UpsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "upsert")

	released := time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC)
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Upsert(ctx, &store.Film{URL: filmURL, Title: "A New Hope", EpisodeID: 4, ReleaseDateRaw: "1977-05-25", ReleaseDate: &released}); err != nil {
			return err
		}
		return tx.Upsert(ctx, &store.Person{URL: lukeURL, Name: "Luke Skywalker", Height: "172", HeightCM: ptr(172.0), Gender: store.GenderMale, HomeworldURL: tatooine})
	})
	require.NoError(t, err)

	rec, err := s.Find(ctx, store.KindFilm, filmURL)
	require.NoError(t, err)
	film, ok := rec.(*store.Film)
	require.True(t, ok)
	assert.Equal(t, "A New Hope", film.Title)
	assert.Equal(t, 4, film.EpisodeID)
	require.NotNil(t, film.ReleaseDate)
	assert.True(t, released.Equal(*film.ReleaseDate))

	rec, err = s.Find(ctx, store.KindPerson, lukeURL)
	require.NoError(t, err)
	luke := rec.(*store.Person)
	assert.Equal(t, tatooine, luke.HomeworldURL)
	require.NotNil(t, luke.HeightCM)
	assert.InDelta(t, 172.0, *luke.HeightCM, 0.001)
	assert.Nil(t, luke.MassKG)
	assert.Equal(t, store.GenderMale, luke.Gender)
}

func TestEntityStore_UpsertOverwritesInPlace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "overwrite")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Planet{URL: tatooine, Name: "Tatooine", Population: "200000", PopulationCount: ptr(int64(200000))})
	}))
	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Planet{URL: tatooine, Name: "Tatooine (updated)", Population: "unknown"})
	}))

	n, err := s.Count(ctx, store.KindPlanet)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := s.Find(ctx, store.KindPlanet, tatooine)
	require.NoError(t, err)
	planet := rec.(*store.Planet)
	assert.Equal(t, "Tatooine (updated)", planet.Name)
	assert.Nil(t, planet.PopulationCount)
}

func TestEntityStore_FindMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t, "missing")

	_, err := s.Find(context.Background(), store.KindStarship, xwingURL)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
	assert.True(t, holoerr.IsNotFound(err))
}

func TestEntityStore_PivotsAndRelated(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "pivots")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		for _, p := range []string{lukeURL, leiaURL} {
			if err := tx.AttachPivot(ctx, store.PivotFilmCharacters, filmURL, p); err != nil {
				return err
			}
		}
		exists, err := tx.PivotExists(ctx, store.PivotFilmCharacters, filmURL, lukeURL)
		if err != nil {
			return err
		}
		if !exists {
			return errors.New("attached pivot not visible inside transaction")
		}
		return tx.AttachPivot(ctx, store.PivotPersonStarships, lukeURL, xwingURL)
	}))

	related, err := s.Related(ctx, store.PivotFilmCharacters, store.KindFilm, filmURL)
	require.NoError(t, err)
	assert.Equal(t, []string{lukeURL, leiaURL}, related)

	films, err := s.Related(ctx, store.PivotFilmCharacters, store.KindPerson, leiaURL)
	require.NoError(t, err)
	assert.Equal(t, []string{filmURL}, films)

	n, err := s.CountRelated(ctx, store.PivotFilmCharacters, store.KindFilm, filmURL)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := s.PivotCount(ctx, store.PivotPersonStarships)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	exists, err := s.PivotExists(ctx, store.PivotPersonStarships, lukeURL, xwingURL)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Related(ctx, store.PivotFilmCharacters, store.KindVehicle, speederURL)
	require.Error(t, err)
	assert.True(t, holoerr.IsInvalidInput(err))
}

func TestEntityStore_DuplicatePivotRowRejected(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "dup-pivot")

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.AttachPivot(ctx, store.PivotPersonSpecies, lukeURL, humanURL); err != nil {
			return err
		}
		return tx.AttachPivot(ctx, store.PivotPersonSpecies, lukeURL, humanURL)
	})
	require.Error(t, err)
	assert.True(t, holoerr.HasCode(err, holoerr.CodeStoreDatabaseFailure))

	n, err := s.PivotCount(ctx, store.PivotPersonSpecies)
	require.NoError(t, err)
	assert.Zero(t, n, "failed transaction must not leave rows behind")
}

func TestEntityStore_UpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "rollback")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Vehicle{URL: speederURL, Name: "Snowspeeder"})
	}))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.DeleteAll(ctx, store.KindVehicle); err != nil {
			return err
		}
		if err := tx.Upsert(ctx, &store.Starship{URL: xwingURL, Name: "X-wing"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	vehicles, err := s.Count(ctx, store.KindVehicle)
	require.NoError(t, err)
	assert.Equal(t, 1, vehicles)

	starships, err := s.Count(ctx, store.KindStarship)
	require.NoError(t, err)
	assert.Zero(t, starships)
}

func TestEntityStore_ResidentsAndNativeSpecies(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "inverse")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		for _, rec := range []store.Record{
			&store.Planet{URL: tatooine, Name: "Tatooine"},
			&store.Person{URL: lukeURL, Name: "Luke Skywalker", HomeworldURL: tatooine},
			&store.Person{URL: leiaURL, Name: "Leia Organa", HomeworldURL: "https://swapi.dev/api/planets/2/"},
			&store.Species{URL: humanURL, Name: "Human", HomeworldURL: tatooine},
		} {
			if err := tx.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}))

	residents, err := s.Residents(ctx, tatooine)
	require.NoError(t, err)
	assert.Equal(t, []string{lukeURL}, residents)

	native, err := s.NativeSpecies(ctx, tatooine)
	require.NoError(t, err)
	assert.Equal(t, []string{humanURL}, native)
}

func TestEntityStore_ListAndCraftColumns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "list")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Starship{
			URL:  xwingURL,
			Name: "X-wing",
			Craft: store.Craft{
				Model:         "T-65 X-wing",
				CostInCredits: "149999",
				CostCredits:   ptr(int64(149999)),
				Length:        "12.5",
				LengthM:       ptr(12.5),
			},
			HyperdriveRatingRaw: "1.0",
			HyperdriveRating:    ptr(1.0),
			StarshipClass:       "Starfighter",
		})
	}))

	recs, err := s.List(ctx, store.KindStarship)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	ship := recs[0].(*store.Starship)
	assert.Equal(t, "T-65 X-wing", ship.Model)
	require.NotNil(t, ship.CostCredits)
	assert.Equal(t, int64(149999), *ship.CostCredits)
	require.NotNil(t, ship.HyperdriveRating)
	assert.InDelta(t, 1.0, *ship.HyperdriveRating, 0.0001)
}

func TestEntityStore_UpsertKeepsRowID(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "rowid")
	s := openStoreAt(t, path)

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Species{URL: humanURL, Name: "Human"})
	}))
	before := rowID(t, path, "species", humanURL)

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Upsert(ctx, &store.Species{URL: humanURL, Name: "Human", Language: "Galactic Basic"})
	}))
	assert.Equal(t, before, rowID(t, path, "species", humanURL))
}

func rowID(t *testing.T, path, table, url string) int64 {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var id int64
	require.NoError(t, db.QueryRow(`SELECT rowid FROM `+table+` WHERE url = ?`, url).Scan(&id))
	return id
}

func TestEntityStore_ViewKeepsOneCommittedState(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "view")

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.AttachPivot(ctx, store.PivotFilmCharacters, filmURL, lukeURL)
	}))

	err := s.View(ctx, func(r store.Reader) error {
		n, err := r.CountRelated(ctx, store.PivotFilmCharacters, store.KindFilm, filmURL)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		// An import commits while the view is open.
		require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
			if err := tx.ClearPivot(ctx, store.PivotFilmCharacters); err != nil {
				return err
			}
			return tx.AttachPivot(ctx, store.PivotFilmPlanets, filmURL, tatooine)
		}))

		related, err := r.Related(ctx, store.PivotFilmCharacters, store.KindFilm, filmURL)
		require.NoError(t, err)
		assert.Equal(t, []string{lukeURL}, related)
		n, err = r.CountRelated(ctx, store.PivotFilmPlanets, store.KindFilm, filmURL)
		require.NoError(t, err)
		assert.Zero(t, n)

		// Nested views share the enclosing snapshot.
		return r.View(ctx, func(inner store.Reader) error {
			n, err := inner.PivotCount(ctx, store.PivotFilmCharacters)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			return nil
		})
	})
	require.NoError(t, err)

	n, err := s.CountRelated(ctx, store.PivotFilmPlanets, store.KindFilm, filmURL)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "reads after the view see the commit")
}

func TestEntityStore_ViewReturnsCallbackError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "view-error")

	boom := errors.New("boom")
	err := s.View(ctx, func(store.Reader) error { return boom })
	assert.ErrorIs(t, err, boom)

	// The connection went back to the pool with its transaction ended.
	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.AttachPivot(ctx, store.PivotFilmCharacters, filmURL, lukeURL)
	}))
}
