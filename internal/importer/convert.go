// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package importer

import (
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
)

func filmRecord(f *snapshot.Film) *store.Film {
	return &store.Film{
		URL:            f.URL,
		Title:          f.Title,
		EpisodeID:      f.EpisodeID,
		OpeningCrawl:   f.OpeningCrawl,
		Director:       f.Director,
		Producer:       f.Producer,
		ReleaseDateRaw: f.ReleaseDate,
		ReleaseDate:    snapshot.ParseDate(f.ReleaseDate),
	}
}

// personRecord leaves HomeworldURL empty; the importer fills it only when the
// planet is part of the same snapshot.
func personRecord(p *snapshot.Person) *store.Person {
	return &store.Person{
		URL:       p.URL,
		Name:      p.Name,
		Height:    p.Height,
		Mass:      p.Mass,
		HairColor: p.HairColor,
		SkinColor: p.SkinColor,
		EyeColor:  p.EyeColor,
		BirthYear: p.BirthYear,
		GenderRaw: p.Gender,
		HeightCM:  snapshot.ParseFloat(p.Height),
		MassKG:    snapshot.ParseFloat(p.Mass),
		Gender:    snapshot.ParseGender(p.Gender),
	}
}

func planetRecord(p *snapshot.Planet) *store.Planet {
	return &store.Planet{
		URL:             p.URL,
		Name:            p.Name,
		RotationPeriod:  p.RotationPeriod,
		OrbitalPeriod:   p.OrbitalPeriod,
		Diameter:        p.Diameter,
		Climate:         p.Climate,
		Gravity:         p.Gravity,
		Terrain:         p.Terrain,
		SurfaceWater:    p.SurfaceWater,
		Population:      p.Population,
		RotationHours:   snapshot.ParseFloat(p.RotationPeriod),
		OrbitalDays:     snapshot.ParseFloat(p.OrbitalPeriod),
		DiameterKM:      snapshot.ParseFloat(p.Diameter),
		SurfaceWaterPct: snapshot.ParseFloat(p.SurfaceWater),
		PopulationCount: snapshot.ParseInt(p.Population),
	}
}

func speciesRecord(s *snapshot.Species) *store.Species {
	return &store.Species{
		URL:                  s.URL,
		Name:                 s.Name,
		Classification:       s.Classification,
		Designation:          s.Designation,
		AverageHeight:        s.AverageHeight,
		AverageLifespan:      s.AverageLifespan,
		Language:             s.Language,
		SkinColors:           s.SkinColors,
		HairColors:           s.HairColors,
		EyeColors:            s.EyeColors,
		AverageHeightCM:      snapshot.ParseFloat(s.AverageHeight),
		AverageLifespanYears: snapshot.ParseFloat(s.AverageLifespan),
	}
}

func craft(model, manufacturer, cost, length, speed, crew, passengers, cargo, consumables string) store.Craft {
	return store.Craft{
		Model:                model,
		Manufacturer:         manufacturer,
		CostInCredits:        cost,
		Length:               length,
		MaxAtmospheringSpeed: speed,
		Crew:                 crew,
		Passengers:           passengers,
		CargoCapacity:        cargo,
		Consumables:          consumables,
		CostCredits:          snapshot.ParseInt(cost),
		LengthM:              snapshot.ParseFloat(length),
	}
}

func starshipRecord(s *snapshot.Starship) *store.Starship {
	return &store.Starship{
		URL:  s.URL,
		Name: s.Name,
		Craft: craft(s.Model, s.Manufacturer, s.CostInCredits, s.Length, s.MaxAtmospheringSpeed,
			s.Crew, s.Passengers, s.CargoCapacity, s.Consumables),
		HyperdriveRatingRaw: s.HyperdriveRating,
		MGLT:                s.MGLT,
		StarshipClass:       s.StarshipClass,
		HyperdriveRating:    snapshot.ParseFloat(s.HyperdriveRating),
	}
}

func vehicleRecord(v *snapshot.Vehicle) *store.Vehicle {
	return &store.Vehicle{
		URL:  v.URL,
		Name: v.Name,
		Craft: craft(v.Model, v.Manufacturer, v.CostInCredits, v.Length, v.MaxAtmospheringSpeed,
			v.Crew, v.Passengers, v.CargoCapacity, v.Consumables),
		VehicleClass: v.VehicleClass,
	}
}
