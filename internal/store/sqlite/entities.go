// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

const dateLayout = "2006-01-02"

var tables = map[store.Kind]string{
	store.KindFilm:     "films",
	store.KindPerson:   "people",
	store.KindPlanet:   "planets",
	store.KindSpecies:  "species",
	store.KindStarship: "starships",
	store.KindVehicle:  "vehicles",
}

var columns = map[store.Kind]string{
	store.KindFilm: `url, title, episode_id, opening_crawl, director, producer, release_date_raw, release_date`,
	store.KindPerson: `url, name, height, mass, hair_color, skin_color, eye_color, birth_year, gender_raw,
	homeworld_url, height_cm, mass_kg, gender`,
	store.KindPlanet: `url, name, rotation_period, orbital_period, diameter, climate, gravity, terrain,
	surface_water, population, rotation_hours, orbital_days, diameter_km, surface_water_pct, population_count`,
	store.KindSpecies: `url, name, classification, designation, average_height, average_lifespan, language,
	skin_colors, hair_colors, eye_colors, homeworld_url, average_height_cm, average_lifespan_years`,
	store.KindStarship: `url, name, model, manufacturer, cost_in_credits, length, max_atmosphering_speed, crew,
	passengers, cargo_capacity, consumables, hyperdrive_rating_raw, mglt, starship_class, cost_credits,
	length_m, hyperdrive_rating`,
	store.KindVehicle: `url, name, model, manufacturer, cost_in_credits, length, max_atmosphering_speed, crew,
	passengers, cargo_capacity, consumables, vehicle_class, cost_credits, length_m`,
}

func tableFor(kind store.Kind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", holoerr.New(holoerr.CodeStoreInvalidInput, "unknown entity kind "+string(kind), holoerr.FieldKind(string(kind)))
	}
	return table, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// upsertRecord writes rec keyed by its url. ON CONFLICT ... DO UPDATE keeps
// the existing rowid instead of deleting and reinserting.
func upsertRecord(ctx context.Context, q querier, rec store.Record) error {
	if rec == nil || rec.Identity() == "" {
		return holoerr.New(holoerr.CodeStoreInvalidInput, "record identity is required")
	}

	var (
		stmt string
		args []any
	)
	switch r := rec.(type) {
	case *store.Film:
		stmt = `INSERT INTO films (` + columns[store.KindFilm] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title = excluded.title,
	episode_id = excluded.episode_id,
	opening_crawl = excluded.opening_crawl,
	director = excluded.director,
	producer = excluded.producer,
	release_date_raw = excluded.release_date_raw,
	release_date = excluded.release_date`
		args = []any{r.URL, r.Title, r.EpisodeID, r.OpeningCrawl, r.Director, r.Producer, r.ReleaseDateRaw, formatDate(r.ReleaseDate)}
	case *store.Person:
		stmt = `INSERT INTO people (` + columns[store.KindPerson] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	height = excluded.height,
	mass = excluded.mass,
	hair_color = excluded.hair_color,
	skin_color = excluded.skin_color,
	eye_color = excluded.eye_color,
	birth_year = excluded.birth_year,
	gender_raw = excluded.gender_raw,
	homeworld_url = excluded.homeworld_url,
	height_cm = excluded.height_cm,
	mass_kg = excluded.mass_kg,
	gender = excluded.gender`
		gender := r.Gender
		if gender == "" {
			gender = store.GenderUnknown
		}
		args = []any{r.URL, r.Name, r.Height, r.Mass, r.HairColor, r.SkinColor, r.EyeColor, r.BirthYear, r.GenderRaw,
			r.HomeworldURL, r.HeightCM, r.MassKG, string(gender)}
	case *store.Planet:
		stmt = `INSERT INTO planets (` + columns[store.KindPlanet] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	rotation_period = excluded.rotation_period,
	orbital_period = excluded.orbital_period,
	diameter = excluded.diameter,
	climate = excluded.climate,
	gravity = excluded.gravity,
	terrain = excluded.terrain,
	surface_water = excluded.surface_water,
	population = excluded.population,
	rotation_hours = excluded.rotation_hours,
	orbital_days = excluded.orbital_days,
	diameter_km = excluded.diameter_km,
	surface_water_pct = excluded.surface_water_pct,
	population_count = excluded.population_count`
		args = []any{r.URL, r.Name, r.RotationPeriod, r.OrbitalPeriod, r.Diameter, r.Climate, r.Gravity, r.Terrain,
			r.SurfaceWater, r.Population, r.RotationHours, r.OrbitalDays, r.DiameterKM, r.SurfaceWaterPct, r.PopulationCount}
	case *store.Species:
		stmt = `INSERT INTO species (` + columns[store.KindSpecies] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	classification = excluded.classification,
	designation = excluded.designation,
	average_height = excluded.average_height,
	average_lifespan = excluded.average_lifespan,
	language = excluded.language,
	skin_colors = excluded.skin_colors,
	hair_colors = excluded.hair_colors,
	eye_colors = excluded.eye_colors,
	homeworld_url = excluded.homeworld_url,
	average_height_cm = excluded.average_height_cm,
	average_lifespan_years = excluded.average_lifespan_years`
		args = []any{r.URL, r.Name, r.Classification, r.Designation, r.AverageHeight, r.AverageLifespan, r.Language,
			r.SkinColors, r.HairColors, r.EyeColors, r.HomeworldURL, r.AverageHeightCM, r.AverageLifespanYears}
	case *store.Starship:
		stmt = `INSERT INTO starships (` + columns[store.KindStarship] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	model = excluded.model,
	manufacturer = excluded.manufacturer,
	cost_in_credits = excluded.cost_in_credits,
	length = excluded.length,
	max_atmosphering_speed = excluded.max_atmosphering_speed,
	crew = excluded.crew,
	passengers = excluded.passengers,
	cargo_capacity = excluded.cargo_capacity,
	consumables = excluded.consumables,
	hyperdrive_rating_raw = excluded.hyperdrive_rating_raw,
	mglt = excluded.mglt,
	starship_class = excluded.starship_class,
	cost_credits = excluded.cost_credits,
	length_m = excluded.length_m,
	hyperdrive_rating = excluded.hyperdrive_rating`
		c := r.Craft
		args = []any{r.URL, r.Name, c.Model, c.Manufacturer, c.CostInCredits, c.Length, c.MaxAtmospheringSpeed, c.Crew,
			c.Passengers, c.CargoCapacity, c.Consumables, r.HyperdriveRatingRaw, r.MGLT, r.StarshipClass, c.CostCredits,
			c.LengthM, r.HyperdriveRating}
	case *store.Vehicle:
		stmt = `INSERT INTO vehicles (` + columns[store.KindVehicle] + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	model = excluded.model,
	manufacturer = excluded.manufacturer,
	cost_in_credits = excluded.cost_in_credits,
	length = excluded.length,
	max_atmosphering_speed = excluded.max_atmosphering_speed,
	crew = excluded.crew,
	passengers = excluded.passengers,
	cargo_capacity = excluded.cargo_capacity,
	consumables = excluded.consumables,
	vehicle_class = excluded.vehicle_class,
	cost_credits = excluded.cost_credits,
	length_m = excluded.length_m`
		c := r.Craft
		args = []any{r.URL, r.Name, c.Model, c.Manufacturer, c.CostInCredits, c.Length, c.MaxAtmospheringSpeed, c.Crew,
			c.Passengers, c.CargoCapacity, c.Consumables, r.VehicleClass, c.CostCredits, c.LengthM}
	default:
		return holoerr.Errorf(holoerr.CodeStoreInvalidInput, "unsupported record type %T", rec)
	}

	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "upserting %s %s: %w", rec.Kind(), rec.Identity(), err)
	}
	return nil
}

func findRecord(ctx context.Context, q querier, kind store.Kind, url string) (store.Record, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+columns[kind]+` FROM `+table+` WHERE url = ?`, url)
	rec, err := scanRecord(kind, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(kind, url)
		}
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "finding %s %s: %w", kind, url, err)
	}
	return rec, nil
}

func listRecords(ctx context.Context, q querier, kind store.Kind) ([]store.Record, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `SELECT `+columns[kind]+` FROM `+table+` ORDER BY url`)
	if err != nil {
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "listing %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Record
	for rows.Next() {
		rec, err := scanRecord(kind, rows)
		if err != nil {
			return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "scanning %s: %w", table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "iterating %s: %w", table, err)
	}
	return out, nil
}

func scanRecord(kind store.Kind, s rowScanner) (store.Record, error) {
	switch kind {
	case store.KindFilm:
		var (
			f    store.Film
			date sql.NullString
		)
		if err := s.Scan(&f.URL, &f.Title, &f.EpisodeID, &f.OpeningCrawl, &f.Director, &f.Producer, &f.ReleaseDateRaw, &date); err != nil {
			return nil, err
		}
		f.ReleaseDate = parseDate(date)
		return &f, nil
	case store.KindPerson:
		var (
			p            store.Person
			height, mass sql.NullFloat64
			gender       string
		)
		if err := s.Scan(&p.URL, &p.Name, &p.Height, &p.Mass, &p.HairColor, &p.SkinColor, &p.EyeColor, &p.BirthYear,
			&p.GenderRaw, &p.HomeworldURL, &height, &mass, &gender); err != nil {
			return nil, err
		}
		p.HeightCM = floatPtr(height)
		p.MassKG = floatPtr(mass)
		p.Gender = store.Gender(gender)
		return &p, nil
	case store.KindPlanet:
		var (
			p                                  store.Planet
			rotation, orbital, diameter, water sql.NullFloat64
			population                         sql.NullInt64
		)
		if err := s.Scan(&p.URL, &p.Name, &p.RotationPeriod, &p.OrbitalPeriod, &p.Diameter, &p.Climate, &p.Gravity,
			&p.Terrain, &p.SurfaceWater, &p.Population, &rotation, &orbital, &diameter, &water, &population); err != nil {
			return nil, err
		}
		p.RotationHours = floatPtr(rotation)
		p.OrbitalDays = floatPtr(orbital)
		p.DiameterKM = floatPtr(diameter)
		p.SurfaceWaterPct = floatPtr(water)
		p.PopulationCount = intPtr(population)
		return &p, nil
	case store.KindSpecies:
		var (
			sp               store.Species
			height, lifespan sql.NullFloat64
		)
		if err := s.Scan(&sp.URL, &sp.Name, &sp.Classification, &sp.Designation, &sp.AverageHeight, &sp.AverageLifespan,
			&sp.Language, &sp.SkinColors, &sp.HairColors, &sp.EyeColors, &sp.HomeworldURL, &height, &lifespan); err != nil {
			return nil, err
		}
		sp.AverageHeightCM = floatPtr(height)
		sp.AverageLifespanYears = floatPtr(lifespan)
		return &sp, nil
	case store.KindStarship:
		var (
			st                 store.Starship
			cost               sql.NullInt64
			length, hyperdrive sql.NullFloat64
		)
		c := &st.Craft
		if err := s.Scan(&st.URL, &st.Name, &c.Model, &c.Manufacturer, &c.CostInCredits, &c.Length, &c.MaxAtmospheringSpeed,
			&c.Crew, &c.Passengers, &c.CargoCapacity, &c.Consumables, &st.HyperdriveRatingRaw, &st.MGLT, &st.StarshipClass,
			&cost, &length, &hyperdrive); err != nil {
			return nil, err
		}
		c.CostCredits = intPtr(cost)
		c.LengthM = floatPtr(length)
		st.HyperdriveRating = floatPtr(hyperdrive)
		return &st, nil
	case store.KindVehicle:
		var (
			v      store.Vehicle
			cost   sql.NullInt64
			length sql.NullFloat64
		)
		c := &v.Craft
		if err := s.Scan(&v.URL, &v.Name, &c.Model, &c.Manufacturer, &c.CostInCredits, &c.Length, &c.MaxAtmospheringSpeed,
			&c.Crew, &c.Passengers, &c.CargoCapacity, &c.Consumables, &v.VehicleClass, &cost, &length); err != nil {
			return nil, err
		}
		c.CostCredits = intPtr(cost)
		c.LengthM = floatPtr(length)
		return &v, nil
	default:
		return nil, holoerr.New(holoerr.CodeStoreInvalidInput, "unknown entity kind "+string(kind))
	}
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(dateLayout), Valid: true}
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
