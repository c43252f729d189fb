// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package store

import (
	"time"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Kind names one of the six entity tables.
type Kind string

const (
	KindFilm     Kind = "film"
	KindPerson   Kind = "person"
	KindPlanet   Kind = "planet"
	KindSpecies  Kind = "species"
	KindStarship Kind = "starship"
	KindVehicle  Kind = "vehicle"
)

// Kinds returns every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindFilm, KindPerson, KindPlanet, KindSpecies, KindStarship, KindVehicle}
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", holoerr.New(holoerr.CodeStoreInvalidInput, "unknown entity kind "+s, holoerr.FieldKind(s))
}

// Pivot describes a join table linking two entity kinds. Rows are stored as
// (A url, B url) pairs.
type Pivot struct {
	Name string
	A    Kind
	B    Kind
}

var (
	PivotFilmCharacters  = Pivot{Name: "film_characters", A: KindFilm, B: KindPerson}
	PivotFilmPlanets     = Pivot{Name: "film_planets", A: KindFilm, B: KindPlanet}
	PivotFilmSpecies     = Pivot{Name: "film_species", A: KindFilm, B: KindSpecies}
	PivotFilmStarships   = Pivot{Name: "film_starships", A: KindFilm, B: KindStarship}
	PivotFilmVehicles    = Pivot{Name: "film_vehicles", A: KindFilm, B: KindVehicle}
	PivotPersonSpecies   = Pivot{Name: "person_species", A: KindPerson, B: KindSpecies}
	PivotPersonStarships = Pivot{Name: "person_starships", A: KindPerson, B: KindStarship}
	PivotPersonVehicles  = Pivot{Name: "person_vehicles", A: KindPerson, B: KindVehicle}
)

// Pivots returns every pivot table.
func Pivots() []Pivot {
	return []Pivot{
		PivotFilmCharacters,
		PivotFilmPlanets,
		PivotFilmSpecies,
		PivotFilmStarships,
		PivotFilmVehicles,
		PivotPersonSpecies,
		PivotPersonStarships,
		PivotPersonVehicles,
	}
}

// Other returns the kind on the opposite side of from, and false when from
// does not participate in p.
func (p Pivot) Other(from Kind) (Kind, bool) {
	switch from {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	default:
		return "", false
	}
}

func (p Pivot) String() string { return p.Name }

// Record is implemented by the six entity types.
type Record interface {
	Kind() Kind
	Identity() string
}

// Gender is the parsed form of Person.GenderRaw.
type Gender string

const (
	GenderMale          Gender = "male"
	GenderFemale        Gender = "female"
	GenderHermaphrodite Gender = "hermaphrodite"
	GenderNone          Gender = "none"
	GenderUnknown       Gender = "unknown"
)

// Film is a row in the films table.
type Film struct {
	URL            string
	Title          string
	EpisodeID      int
	OpeningCrawl   string
	Director       string
	Producer       string
	ReleaseDateRaw string

	ReleaseDate *time.Time
}

// Person is a row in the people table. HomeworldURL is a plain identity
// reference and may name a planet that is not stored.
type Person struct {
	URL          string
	Name         string
	Height       string
	Mass         string
	HairColor    string
	SkinColor    string
	EyeColor     string
	BirthYear    string
	GenderRaw    string
	HomeworldURL string

	HeightCM *float64
	MassKG   *float64
	Gender   Gender
}

// Planet is a row in the planets table.
type Planet struct {
	URL            string
	Name           string
	RotationPeriod string
	OrbitalPeriod  string
	Diameter       string
	Climate        string
	Gravity        string
	Terrain        string
	SurfaceWater   string
	Population     string

	RotationHours   *float64
	OrbitalDays     *float64
	DiameterKM      *float64
	SurfaceWaterPct *float64
	PopulationCount *int64
}

// Species is a row in the species table.
type Species struct {
	URL             string
	Name            string
	Classification  string
	Designation     string
	AverageHeight   string
	AverageLifespan string
	Language        string
	SkinColors      string
	HairColors      string
	EyeColors       string
	HomeworldURL    string

	AverageHeightCM      *float64
	AverageLifespanYears *float64
}

// Craft holds the columns shared by starships and vehicles.
type Craft struct {
	Model                string
	Manufacturer         string
	CostInCredits        string
	Length               string
	MaxAtmospheringSpeed string
	Crew                 string
	Passengers           string
	CargoCapacity        string
	Consumables          string

	CostCredits *int64
	LengthM     *float64
}

// Starship is a row in the starships table.
type Starship struct {
	URL  string
	Name string
	Craft
	HyperdriveRatingRaw string
	MGLT                string
	StarshipClass       string

	HyperdriveRating *float64
}

// Vehicle is a row in the vehicles table.
type Vehicle struct {
	URL  string
	Name string
	Craft
	VehicleClass string
}

func (*Film) Kind() Kind     { return KindFilm }
func (*Person) Kind() Kind   { return KindPerson }
func (*Planet) Kind() Kind   { return KindPlanet }
func (*Species) Kind() Kind  { return KindSpecies }
func (*Starship) Kind() Kind { return KindStarship }
func (*Vehicle) Kind() Kind  { return KindVehicle }

func (f *Film) Identity() string     { return f.URL }
func (p *Person) Identity() string   { return p.URL }
func (p *Planet) Identity() string   { return p.URL }
func (s *Species) Identity() string  { return s.URL }
func (s *Starship) Identity() string { return s.URL }
func (v *Vehicle) Identity() string  { return v.URL }
