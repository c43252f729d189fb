// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package snapshot defines the denormalized payload consumed by the importer
// and loads it from JSON or YAML files.
package snapshot

// Snapshot is one complete synchronization pass: six ordered lists of flat
// records whose relationship fields are plain lists of identity URLs.
type Snapshot struct {
	Films     []Film     `json:"films" yaml:"films"`
	People    []Person   `json:"people" yaml:"people"`
	Planets   []Planet   `json:"planets" yaml:"planets"`
	Species   []Species  `json:"species" yaml:"species"`
	Starships []Starship `json:"starships" yaml:"starships"`
	Vehicles  []Vehicle  `json:"vehicles" yaml:"vehicles"`
}

// Empty reports whether every list is empty.
func (s *Snapshot) Empty() bool {
	return len(s.Films) == 0 && len(s.People) == 0 && len(s.Planets) == 0 &&
		len(s.Species) == 0 && len(s.Starships) == 0 && len(s.Vehicles) == 0
}

type Film struct {
	URL          string   `json:"url" yaml:"url"`
	Title        string   `json:"title" yaml:"title"`
	EpisodeID    int      `json:"episode_id" yaml:"episode_id"`
	OpeningCrawl string   `json:"opening_crawl" yaml:"opening_crawl"`
	Director     string   `json:"director" yaml:"director"`
	Producer     string   `json:"producer" yaml:"producer"`
	ReleaseDate  string   `json:"release_date" yaml:"release_date"`
	Characters   []string `json:"characters" yaml:"characters"`
	Planets      []string `json:"planets" yaml:"planets"`
	Starships    []string `json:"starships" yaml:"starships"`
	Vehicles     []string `json:"vehicles" yaml:"vehicles"`
	Species      []string `json:"species" yaml:"species"`
}

type Person struct {
	URL       string   `json:"url" yaml:"url"`
	Name      string   `json:"name" yaml:"name"`
	Height    string   `json:"height" yaml:"height"`
	Mass      string   `json:"mass" yaml:"mass"`
	HairColor string   `json:"hair_color" yaml:"hair_color"`
	SkinColor string   `json:"skin_color" yaml:"skin_color"`
	EyeColor  string   `json:"eye_color" yaml:"eye_color"`
	BirthYear string   `json:"birth_year" yaml:"birth_year"`
	Gender    string   `json:"gender" yaml:"gender"`
	Homeworld string   `json:"homeworld" yaml:"homeworld"`
	Films     []string `json:"films" yaml:"films"`
	Species   []string `json:"species" yaml:"species"`
	Vehicles  []string `json:"vehicles" yaml:"vehicles"`
	Starships []string `json:"starships" yaml:"starships"`
}

// Planet.Residents mirrors Person.Homeworld and is not imported as an edge.
type Planet struct {
	URL            string   `json:"url" yaml:"url"`
	Name           string   `json:"name" yaml:"name"`
	RotationPeriod string   `json:"rotation_period" yaml:"rotation_period"`
	OrbitalPeriod  string   `json:"orbital_period" yaml:"orbital_period"`
	Diameter       string   `json:"diameter" yaml:"diameter"`
	Climate        string   `json:"climate" yaml:"climate"`
	Gravity        string   `json:"gravity" yaml:"gravity"`
	Terrain        string   `json:"terrain" yaml:"terrain"`
	SurfaceWater   string   `json:"surface_water" yaml:"surface_water"`
	Population     string   `json:"population" yaml:"population"`
	Residents      []string `json:"residents" yaml:"residents"`
	Films          []string `json:"films" yaml:"films"`
}

type Species struct {
	URL             string   `json:"url" yaml:"url"`
	Name            string   `json:"name" yaml:"name"`
	Classification  string   `json:"classification" yaml:"classification"`
	Designation     string   `json:"designation" yaml:"designation"`
	AverageHeight   string   `json:"average_height" yaml:"average_height"`
	SkinColors      string   `json:"skin_colors" yaml:"skin_colors"`
	HairColors      string   `json:"hair_colors" yaml:"hair_colors"`
	EyeColors       string   `json:"eye_colors" yaml:"eye_colors"`
	AverageLifespan string   `json:"average_lifespan" yaml:"average_lifespan"`
	Homeworld       string   `json:"homeworld" yaml:"homeworld"`
	Language        string   `json:"language" yaml:"language"`
	People          []string `json:"people" yaml:"people"`
	Films           []string `json:"films" yaml:"films"`
}

type Starship struct {
	URL                  string   `json:"url" yaml:"url"`
	Name                 string   `json:"name" yaml:"name"`
	Model                string   `json:"model" yaml:"model"`
	Manufacturer         string   `json:"manufacturer" yaml:"manufacturer"`
	CostInCredits        string   `json:"cost_in_credits" yaml:"cost_in_credits"`
	Length               string   `json:"length" yaml:"length"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed" yaml:"max_atmosphering_speed"`
	Crew                 string   `json:"crew" yaml:"crew"`
	Passengers           string   `json:"passengers" yaml:"passengers"`
	CargoCapacity        string   `json:"cargo_capacity" yaml:"cargo_capacity"`
	Consumables          string   `json:"consumables" yaml:"consumables"`
	HyperdriveRating     string   `json:"hyperdrive_rating" yaml:"hyperdrive_rating"`
	MGLT                 string   `json:"MGLT" yaml:"MGLT"`
	StarshipClass        string   `json:"starship_class" yaml:"starship_class"`
	Pilots               []string `json:"pilots" yaml:"pilots"`
	Films                []string `json:"films" yaml:"films"`
}

type Vehicle struct {
	URL                  string   `json:"url" yaml:"url"`
	Name                 string   `json:"name" yaml:"name"`
	Model                string   `json:"model" yaml:"model"`
	Manufacturer         string   `json:"manufacturer" yaml:"manufacturer"`
	CostInCredits        string   `json:"cost_in_credits" yaml:"cost_in_credits"`
	Length               string   `json:"length" yaml:"length"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed" yaml:"max_atmosphering_speed"`
	Crew                 string   `json:"crew" yaml:"crew"`
	Passengers           string   `json:"passengers" yaml:"passengers"`
	CargoCapacity        string   `json:"cargo_capacity" yaml:"cargo_capacity"`
	Consumables          string   `json:"consumables" yaml:"consumables"`
	VehicleClass         string   `json:"vehicle_class" yaml:"vehicle_class"`
	Pilots               []string `json:"pilots" yaml:"pilots"`
	Films                []string `json:"films" yaml:"films"`
}
