// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package query

import (
	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Relation names one of a film's five relationship kinds.
type Relation string

const (
	RelationCharacters Relation = "characters"
	RelationPlanets    Relation = "planets"
	RelationSpecies    Relation = "species"
	RelationStarships  Relation = "starships"
	RelationVehicles   Relation = "vehicles"
)

var relationPivots = map[Relation]store.Pivot{
	RelationCharacters: store.PivotFilmCharacters,
	RelationPlanets:    store.PivotFilmPlanets,
	RelationSpecies:    store.PivotFilmSpecies,
	RelationStarships:  store.PivotFilmStarships,
	RelationVehicles:   store.PivotFilmVehicles,
}

// Relations returns every relation in display order.
func Relations() []Relation {
	return []Relation{RelationCharacters, RelationPlanets, RelationSpecies, RelationStarships, RelationVehicles}
}

func ParseRelation(s string) (Relation, error) {
	r := Relation(s)
	if _, ok := relationPivots[r]; !ok {
		return "", holoerr.New(holoerr.CodeQueryRelationInvalid, "unknown relation "+s, holoerr.FieldRelation(s))
	}
	return r, nil
}

func (r Relation) Valid() bool {
	_, ok := relationPivots[r]
	return ok
}

// Pivot returns the film pivot backing r.
func (r Relation) Pivot() store.Pivot {
	return relationPivots[r]
}

// Kind returns the entity kind listed by r.
func (r Relation) Kind() store.Kind {
	k, _ := relationPivots[r].Other(store.KindFilm)
	return k
}

func (r Relation) String() string { return string(r) }
