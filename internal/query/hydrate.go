// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package query

import (
	"context"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// hydrate loads url of kind with its first-order relationships. It returns a
// nil Detail when the entity has no row.
func (s *Service) hydrate(ctx context.Context, kind store.Kind, url string) (Detail, error) {
	rec, err := s.reader.Find(ctx, kind, url)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "loading %s %s", kind, url)
	}

	switch r := rec.(type) {
	case *store.Person:
		return s.personDetail(ctx, r)
	case *store.Planet:
		return s.planetDetail(ctx, r)
	case *store.Species:
		return s.speciesDetail(ctx, r)
	case *store.Starship:
		return s.starshipDetail(ctx, r)
	case *store.Vehicle:
		return s.vehicleDetail(ctx, r)
	case *store.Film:
		return s.filmDetail(ctx, r)
	default:
		return nil, holoerr.New(holoerr.CodeQueryHydrationFailure, "unsupported record kind "+string(kind), holoerr.FieldKind(string(kind)))
	}
}

func (s *Service) personDetail(ctx context.Context, p *store.Person) (*PersonDetail, error) {
	d := &PersonDetail{PersonInfo: personInfo(p)}
	var err error
	if d.Homeworld, err = s.planetRef(ctx, p.HomeworldURL); err != nil {
		return nil, err
	}
	if d.Species, err = related(ctx, s, store.PivotPersonSpecies, store.KindPerson, p.URL, speciesInfo); err != nil {
		return nil, err
	}
	if d.Starships, err = related(ctx, s, store.PivotPersonStarships, store.KindPerson, p.URL, starshipInfo); err != nil {
		return nil, err
	}
	if d.Vehicles, err = related(ctx, s, store.PivotPersonVehicles, store.KindPerson, p.URL, vehicleInfo); err != nil {
		return nil, err
	}
	if d.Films, err = s.films(ctx, store.PivotFilmCharacters, store.KindPerson, p.URL); err != nil {
		return nil, err
	}
	sortByName(d.Species, func(i SpeciesInfo) (string, string) { return i.Name, i.URL })
	sortByName(d.Starships, func(i StarshipInfo) (string, string) { return i.Name, i.URL })
	sortByName(d.Vehicles, func(i VehicleInfo) (string, string) { return i.Name, i.URL })
	return d, nil
}

func (s *Service) planetDetail(ctx context.Context, p *store.Planet) (*PlanetDetail, error) {
	d := &PlanetDetail{PlanetInfo: planetInfo(p)}

	residents, err := s.reader.Residents(ctx, p.URL)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "residents of %s", p.URL)
	}
	if d.Residents, err = load(ctx, s.reader, store.KindPerson, residents, personInfo); err != nil {
		return nil, err
	}

	native, err := s.reader.NativeSpecies(ctx, p.URL)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "native species of %s", p.URL)
	}
	if d.NativeSpecies, err = load(ctx, s.reader, store.KindSpecies, native, speciesInfo); err != nil {
		return nil, err
	}

	if d.Films, err = s.films(ctx, store.PivotFilmPlanets, store.KindPlanet, p.URL); err != nil {
		return nil, err
	}
	sortByName(d.Residents, func(i PersonInfo) (string, string) { return i.Name, i.URL })
	sortByName(d.NativeSpecies, func(i SpeciesInfo) (string, string) { return i.Name, i.URL })
	return d, nil
}

func (s *Service) speciesDetail(ctx context.Context, sp *store.Species) (*SpeciesDetail, error) {
	d := &SpeciesDetail{SpeciesInfo: speciesInfo(sp)}
	var err error
	if d.Homeworld, err = s.planetRef(ctx, sp.HomeworldURL); err != nil {
		return nil, err
	}
	if d.People, err = related(ctx, s, store.PivotPersonSpecies, store.KindSpecies, sp.URL, personInfo); err != nil {
		return nil, err
	}
	if d.Films, err = s.films(ctx, store.PivotFilmSpecies, store.KindSpecies, sp.URL); err != nil {
		return nil, err
	}
	sortByName(d.People, func(i PersonInfo) (string, string) { return i.Name, i.URL })
	return d, nil
}

func (s *Service) starshipDetail(ctx context.Context, sh *store.Starship) (*StarshipDetail, error) {
	d := &StarshipDetail{StarshipInfo: starshipInfo(sh)}
	var err error
	if d.Pilots, err = related(ctx, s, store.PivotPersonStarships, store.KindStarship, sh.URL, personInfo); err != nil {
		return nil, err
	}
	if d.Films, err = s.films(ctx, store.PivotFilmStarships, store.KindStarship, sh.URL); err != nil {
		return nil, err
	}
	sortByName(d.Pilots, func(i PersonInfo) (string, string) { return i.Name, i.URL })
	return d, nil
}

func (s *Service) vehicleDetail(ctx context.Context, v *store.Vehicle) (*VehicleDetail, error) {
	d := &VehicleDetail{VehicleInfo: vehicleInfo(v)}
	var err error
	if d.Pilots, err = related(ctx, s, store.PivotPersonVehicles, store.KindVehicle, v.URL, personInfo); err != nil {
		return nil, err
	}
	if d.Films, err = s.films(ctx, store.PivotFilmVehicles, store.KindVehicle, v.URL); err != nil {
		return nil, err
	}
	sortByName(d.Pilots, func(i PersonInfo) (string, string) { return i.Name, i.URL })
	return d, nil
}

// planetRef resolves an optional homeworld reference. An empty or unknown
// URL yields nil.
func (s *Service) planetRef(ctx context.Context, url string) (*PlanetInfo, error) {
	if url == "" {
		return nil, nil
	}
	infos, err := load(ctx, s.reader, store.KindPlanet, []string{url}, planetInfo)
	if err != nil || len(infos) == 0 {
		return nil, err
	}
	return &infos[0], nil
}

// films returns the films on the far side of p in film order.
func (s *Service) films(ctx context.Context, p store.Pivot, from store.Kind, url string) ([]FilmInfo, error) {
	infos, err := related(ctx, s, p, from, url, filmInfo)
	if err != nil {
		return nil, err
	}
	sortFilms(infos)
	return infos, nil
}

// related loads the entities on the far side of p as info values.
func related[R store.Record, I any](ctx context.Context, s *Service, p store.Pivot, from store.Kind, url string, info func(R) I) ([]I, error) {
	to, ok := p.Other(from)
	if !ok {
		return nil, holoerr.New(holoerr.CodeQueryHydrationFailure, "kind "+string(from)+" not in pivot "+p.Name)
	}
	urls, err := s.reader.Related(ctx, p, from, url)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "%s of %s", p.Name, url)
	}
	return load(ctx, s.reader, to, urls, info)
}

// load finds each url of kind, skipping identities with no row.
func load[R store.Record, I any](ctx context.Context, r store.Reader, kind store.Kind, urls []string, info func(R) I) ([]I, error) {
	out := make([]I, 0, len(urls))
	for _, url := range urls {
		rec, err := r.Find(ctx, kind, url)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, holoerr.Wrapf(err, holoerr.CodeQueryHydrationFailure, "loading %s %s", kind, url)
		}
		typed, ok := rec.(R)
		if !ok {
			return nil, holoerr.New(holoerr.CodeQueryHydrationFailure, "unexpected record for "+url, holoerr.FieldKind(string(kind)))
		}
		out = append(out, info(typed))
	}
	return out, nil
}
