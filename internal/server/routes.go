// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
	s.registerViewRoutes()
	s.registerSSERoute()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-films",
		Method:      http.MethodGet,
		Path:        "/api/v1/films",
		Summary:     "List films with relationship counts",
		Tags:        []string{"films"},
	}, s.handleListFilms)

	huma.Register(s.api, huma.Operation{
		OperationID: "film-summary",
		Method:      http.MethodGet,
		Path:        "/api/v1/films/summary",
		Summary:     "Relationship counts of one film",
		Tags:        []string{"films"},
	}, s.handleFilmSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "film-relationships",
		Method:      http.MethodGet,
		Path:        "/api/v1/films/relationships",
		Summary:     "Hydrated entities of one film relationship",
		Tags:        []string{"films"},
	}, s.handleFilmRelationships)

	huma.Register(s.api, huma.Operation{
		OperationID:   "import-snapshot",
		Method:        http.MethodPost,
		Path:          "/api/v1/import",
		Summary:       "Replace the store with a snapshot",
		Description:   "Accepts a JSON body, or YAML when Content-Type names yaml. The store is replaced in one transaction.",
		Tags:          []string{"import"},
		DefaultStatus: http.StatusOK,
	}, s.handleImport)
}

// --- Request/Response types for huma ---

// Entity is one hydrated relationship entity. Kind names the populated
// field.
type Entity struct {
	Kind     store.Kind            `json:"kind" enum:"person,planet,species,starship,vehicle,film" doc:"Which of the detail fields is set"`
	Person   *query.PersonDetail   `json:"person,omitempty"`
	Planet   *query.PlanetDetail   `json:"planet,omitempty"`
	Species  *query.SpeciesDetail  `json:"species,omitempty"`
	Starship *query.StarshipDetail `json:"starship,omitempty"`
	Vehicle  *query.VehicleDetail  `json:"vehicle,omitempty"`
	Film     *query.FilmDetail     `json:"film,omitempty"`
}

func entityOf(d query.Detail) Entity {
	e := Entity{Kind: d.Kind()}
	switch v := d.(type) {
	case *query.PersonDetail:
		e.Person = v
	case *query.PlanetDetail:
		e.Planet = v
	case *query.SpeciesDetail:
		e.Species = v
	case *query.StarshipDetail:
		e.Starship = v
	case *query.VehicleDetail:
		e.Vehicle = v
	case *query.FilmDetail:
		e.Film = v
	}
	return e
}

func entitiesOf(details []query.Detail) []Entity {
	out := make([]Entity, 0, len(details))
	for _, d := range details {
		out = append(out, entityOf(d))
	}
	return out
}

type listFilmsOutput struct {
	Body struct {
		Films []*query.FilmDetail `json:"films"`
	}
}

type filmInput struct {
	Film string `query:"film" required:"true" minLength:"1" doc:"Film identity URL"`
}

type summaryOutput struct {
	Body query.Summary
}

type relationshipsInput struct {
	Film     string `query:"film" required:"true" minLength:"1" doc:"Film identity URL"`
	Relation string `query:"relation" required:"true" enum:"characters,planets,species,starships,vehicles"`
}

type relationshipsOutput struct {
	Body struct {
		Film     string  `json:"film"`
		Relation string  `json:"relation"`
		Entities []Entity `json:"entities"`
	}
}

type importInput struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/json"`
}

// ImportResult is the report of one committed import.
type ImportResult struct {
	Entities   map[string]int `json:"entities" doc:"Rows upserted per entity kind"`
	Pivots     map[string]int `json:"pivots" doc:"Rows attached per pivot table"`
	Duplicates int            `json:"duplicates_absorbed" doc:"Edges seen more than once and attached once"`
	Dangling   int            `json:"dangling_skipped" doc:"References to identities absent from the snapshot"`
	ElapsedMS  float64        `json:"elapsed_ms"`
	BatchID    string         `json:"batch_id,omitempty" doc:"Change batch published after commit"`
	Kinds      []string       `json:"kinds,omitempty" doc:"Entity kinds named in the change batch"`
}

func importResultOf(r *importer.Report) ImportResult {
	out := ImportResult{
		Entities:   make(map[string]int, len(r.Entities)),
		Pivots:     r.Pivots,
		Duplicates: r.Duplicates,
		Dangling:   r.Dangling,
		ElapsedMS:  float64(r.Elapsed.Microseconds()) / 1000,
	}
	for k, n := range r.Entities {
		out.Entities[string(k)] = n
	}
	if r.Batch != nil {
		out.BatchID = r.Batch.ID.String()
		for _, k := range r.Batch.Kinds {
			out.Kinds = append(out.Kinds, string(k))
		}
	}
	return out
}

type importOutput struct {
	Body ImportResult
}

// --- Handlers ---

func (s *Server) handleListFilms(ctx context.Context, _ *struct{}) (*listFilmsOutput, error) {
	films, err := s.services.query.Films(ctx)
	if err != nil {
		return nil, s.apiError(err, "listing films")
	}
	out := &listFilmsOutput{}
	out.Body.Films = films
	return out, nil
}

func (s *Server) handleFilmSummary(ctx context.Context, input *filmInput) (*summaryOutput, error) {
	sum, err := s.services.query.Summary(ctx, input.Film)
	if err != nil {
		return nil, s.apiError(err, "loading film summary")
	}
	return &summaryOutput{Body: sum}, nil
}

func (s *Server) handleFilmRelationships(ctx context.Context, input *relationshipsInput) (*relationshipsOutput, error) {
	rel, err := query.ParseRelation(input.Relation)
	if err != nil {
		return nil, s.apiError(err, "parsing relation")
	}
	details, err := s.services.query.Entities(ctx, input.Film, rel)
	if err != nil {
		return nil, s.apiError(err, "loading film relationships")
	}
	out := &relationshipsOutput{}
	out.Body.Film = input.Film
	out.Body.Relation = string(rel)
	out.Body.Entities = entitiesOf(details)
	return out, nil
}

func (s *Server) handleImport(ctx context.Context, input *importInput) (*importOutput, error) {
	format := snapshot.FormatJSON
	if strings.Contains(strings.ToLower(input.ContentType), "yaml") {
		format = snapshot.FormatYAML
	}

	snap, err := snapshot.Decode(bytes.NewReader(input.RawBody), format)
	if err != nil {
		return nil, huma.Error400BadRequest("decoding snapshot", err)
	}

	report, err := s.services.importer.Import(ctx, snap)
	if err != nil {
		return nil, s.apiError(err, "importing snapshot")
	}
	return &importOutput{Body: importResultOf(report)}, nil
}

// apiError maps err to a huma status error by its code. Server-side failures
// are logged.
func (s *Server) apiError(err error, msg string) error {
	status := holoerr.StatusOf(codeOf(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, slog.Any("error", err))
	}
	return huma.NewError(status, msg, err)
}
