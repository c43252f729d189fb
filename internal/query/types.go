// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package query

import (
	"time"

	"github.com/holocron-dev/holocron/internal/store"
)

// Summary holds the per-relation pivot counts of one film.
type Summary struct {
	Film       string `json:"film"`
	Characters int    `json:"characters"`
	Planets    int    `json:"planets"`
	Species    int    `json:"species"`
	Starships  int    `json:"starships"`
	Vehicles   int    `json:"vehicles"`
}

// Count returns the count for rel.
func (s Summary) Count(rel Relation) int {
	switch rel {
	case RelationCharacters:
		return s.Characters
	case RelationPlanets:
		return s.Planets
	case RelationSpecies:
		return s.Species
	case RelationStarships:
		return s.Starships
	case RelationVehicles:
		return s.Vehicles
	default:
		return 0
	}
}

func (s *Summary) set(rel Relation, n int) {
	switch rel {
	case RelationCharacters:
		s.Characters = n
	case RelationPlanets:
		s.Planets = n
	case RelationSpecies:
		s.Species = n
	case RelationStarships:
		s.Starships = n
	case RelationVehicles:
		s.Vehicles = n
	}
}

// Info types are the first-order view of an entity, embedded in the details
// of its neighbours.

type FilmInfo struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	EpisodeID   int        `json:"episode_id"`
	Director    string     `json:"director"`
	Producer    string     `json:"producer"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

type PersonInfo struct {
	URL       string       `json:"url"`
	Name      string       `json:"name"`
	BirthYear string       `json:"birth_year"`
	HairColor string       `json:"hair_color"`
	SkinColor string       `json:"skin_color"`
	EyeColor  string       `json:"eye_color"`
	Gender    store.Gender `json:"gender"`
	HeightCM  *float64     `json:"height_cm,omitempty"`
	MassKG    *float64     `json:"mass_kg,omitempty"`
}

type PlanetInfo struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Climate         string   `json:"climate"`
	Terrain         string   `json:"terrain"`
	Gravity         string   `json:"gravity"`
	DiameterKM      *float64 `json:"diameter_km,omitempty"`
	RotationHours   *float64 `json:"rotation_hours,omitempty"`
	OrbitalDays     *float64 `json:"orbital_days,omitempty"`
	SurfaceWaterPct *float64 `json:"surface_water_pct,omitempty"`
	Population      *int64   `json:"population,omitempty"`
}

type SpeciesInfo struct {
	URL                  string   `json:"url"`
	Name                 string   `json:"name"`
	Classification       string   `json:"classification"`
	Designation          string   `json:"designation"`
	Language             string   `json:"language"`
	AverageHeightCM      *float64 `json:"average_height_cm,omitempty"`
	AverageLifespanYears *float64 `json:"average_lifespan_years,omitempty"`
}

type StarshipInfo struct {
	URL              string   `json:"url"`
	Name             string   `json:"name"`
	Model            string   `json:"model"`
	Manufacturer     string   `json:"manufacturer"`
	StarshipClass    string   `json:"starship_class"`
	MGLT             string   `json:"mglt"`
	CostCredits      *int64   `json:"cost_credits,omitempty"`
	LengthM          *float64 `json:"length_m,omitempty"`
	HyperdriveRating *float64 `json:"hyperdrive_rating,omitempty"`
}

type VehicleInfo struct {
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	VehicleClass string   `json:"vehicle_class"`
	CostCredits  *int64   `json:"cost_credits,omitempty"`
	LengthM      *float64 `json:"length_m,omitempty"`
}

// Detail is one hydrated entity in a relationship listing. The concrete type
// is one of *PersonDetail, *PlanetDetail, *SpeciesDetail, *StarshipDetail,
// *VehicleDetail or *FilmDetail.
type Detail interface {
	Kind() store.Kind
	Identity() string
	DisplayName() string
}

type PersonDetail struct {
	PersonInfo
	Homeworld *PlanetInfo    `json:"homeworld,omitempty"`
	Species   []SpeciesInfo  `json:"species"`
	Starships []StarshipInfo `json:"starships"`
	Vehicles  []VehicleInfo  `json:"vehicles"`
	Films     []FilmInfo     `json:"films"`
}

type PlanetDetail struct {
	PlanetInfo
	Residents     []PersonInfo  `json:"residents"`
	NativeSpecies []SpeciesInfo `json:"native_species"`
	Films         []FilmInfo    `json:"films"`
}

type SpeciesDetail struct {
	SpeciesInfo
	Homeworld *PlanetInfo  `json:"homeworld,omitempty"`
	People    []PersonInfo `json:"people"`
	Films     []FilmInfo   `json:"films"`
}

type StarshipDetail struct {
	StarshipInfo
	Pilots []PersonInfo `json:"pilots"`
	Films  []FilmInfo   `json:"films"`
}

type VehicleDetail struct {
	VehicleInfo
	Pilots []PersonInfo `json:"pilots"`
	Films  []FilmInfo   `json:"films"`
}

type FilmDetail struct {
	FilmInfo
	OpeningCrawl string  `json:"opening_crawl"`
	Counts       Summary `json:"counts"`
}

func (d *PersonDetail) Kind() store.Kind    { return store.KindPerson }
func (d *PersonDetail) Identity() string    { return d.URL }
func (d *PersonDetail) DisplayName() string { return d.Name }

func (d *PlanetDetail) Kind() store.Kind    { return store.KindPlanet }
func (d *PlanetDetail) Identity() string    { return d.URL }
func (d *PlanetDetail) DisplayName() string { return d.Name }

func (d *SpeciesDetail) Kind() store.Kind    { return store.KindSpecies }
func (d *SpeciesDetail) Identity() string    { return d.URL }
func (d *SpeciesDetail) DisplayName() string { return d.Name }

func (d *StarshipDetail) Kind() store.Kind    { return store.KindStarship }
func (d *StarshipDetail) Identity() string    { return d.URL }
func (d *StarshipDetail) DisplayName() string { return d.Name }

func (d *VehicleDetail) Kind() store.Kind    { return store.KindVehicle }
func (d *VehicleDetail) Identity() string    { return d.URL }
func (d *VehicleDetail) DisplayName() string { return d.Name }

func (d *FilmDetail) Kind() store.Kind    { return store.KindFilm }
func (d *FilmDetail) Identity() string    { return d.URL }
func (d *FilmDetail) DisplayName() string { return d.Title }

func filmInfo(f *store.Film) FilmInfo {
	return FilmInfo{
		URL:         f.URL,
		Title:       f.Title,
		EpisodeID:   f.EpisodeID,
		Director:    f.Director,
		Producer:    f.Producer,
		ReleaseDate: f.ReleaseDate,
	}
}

func personInfo(p *store.Person) PersonInfo {
	return PersonInfo{
		URL:       p.URL,
		Name:      p.Name,
		BirthYear: p.BirthYear,
		HairColor: p.HairColor,
		SkinColor: p.SkinColor,
		EyeColor:  p.EyeColor,
		Gender:    p.Gender,
		HeightCM:  p.HeightCM,
		MassKG:    p.MassKG,
	}
}

func planetInfo(p *store.Planet) PlanetInfo {
	return PlanetInfo{
		URL:             p.URL,
		Name:            p.Name,
		Climate:         p.Climate,
		Terrain:         p.Terrain,
		Gravity:         p.Gravity,
		DiameterKM:      p.DiameterKM,
		RotationHours:   p.RotationHours,
		OrbitalDays:     p.OrbitalDays,
		SurfaceWaterPct: p.SurfaceWaterPct,
		Population:      p.PopulationCount,
	}
}

func speciesInfo(s *store.Species) SpeciesInfo {
	return SpeciesInfo{
		URL:                  s.URL,
		Name:                 s.Name,
		Classification:       s.Classification,
		Designation:          s.Designation,
		Language:             s.Language,
		AverageHeightCM:      s.AverageHeightCM,
		AverageLifespanYears: s.AverageLifespanYears,
	}
}

func starshipInfo(s *store.Starship) StarshipInfo {
	return StarshipInfo{
		URL:              s.URL,
		Name:             s.Name,
		Model:            s.Model,
		Manufacturer:     s.Manufacturer,
		StarshipClass:    s.StarshipClass,
		MGLT:             s.MGLT,
		CostCredits:      s.CostCredits,
		LengthM:          s.LengthM,
		HyperdriveRating: s.HyperdriveRating,
	}
}

func vehicleInfo(v *store.Vehicle) VehicleInfo {
	return VehicleInfo{
		URL:          v.URL,
		Name:         v.Name,
		Model:        v.Model,
		Manufacturer: v.Manufacturer,
		VehicleClass: v.VehicleClass,
		CostCredits:  v.CostCredits,
		LengthM:      v.LengthM,
	}
}
