// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/internal/cache"
	"github.com/holocron-dev/holocron/internal/query"
)

func (s *Server) registerViewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "open-view",
		Method:        http.MethodPost,
		Path:          "/api/v1/views",
		Summary:       "Open a relationship view",
		Description:   "A view caches relationship listings for one selected film and refreshes them when imports commit.",
		Tags:          []string{"views"},
		DefaultStatus: http.StatusCreated,
	}, s.handleOpenView)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-view",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/{id}",
		Summary:     "View selection and slot states",
		Tags:        []string{"views"},
	}, s.handleGetView)

	huma.Register(s.api, huma.Operation{
		OperationID: "select-view-film",
		Method:      http.MethodPut,
		Path:        "/api/v1/views/{id}/selection",
		Summary:     "Select the film a view shows",
		Tags:        []string{"views"},
	}, s.handleSelectFilm)

	huma.Register(s.api, huma.Operation{
		OperationID: "view-summary",
		Method:      http.MethodPost,
		Path:        "/api/v1/views/{id}/summary",
		Summary:     "Load the relationship counts of the selected film",
		Tags:        []string{"views"},
	}, s.handleViewSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "view-relationships",
		Method:      http.MethodPost,
		Path:        "/api/v1/views/{id}/relationships/{relation}",
		Summary:     "Load one relationship of the selected film",
		Description: "Concurrent loads of the same relationship share one fetch. force=true discards the cached listing and cancels a fetch in flight.",
		Tags:        []string{"views"},
	}, s.handleViewRelationships)

	huma.Register(s.api, huma.Operation{
		OperationID:   "close-view",
		Method:        http.MethodDelete,
		Path:          "/api/v1/views/{id}",
		Summary:       "Close a relationship view",
		Tags:          []string{"views"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleCloseView)
}

// SlotView is the state of one relationship slot.
type SlotView struct {
	Relation string `json:"relation"`
	State    string `json:"state" enum:"idle,loading,loaded,failed"`
	Count    int    `json:"count" doc:"Number of entities when loaded"`
	Error    string `json:"error,omitempty"`
}

// ViewStatus is a point-in-time copy of a view.
type ViewStatus struct {
	ID           string         `json:"id" format:"uuid"`
	Film         string         `json:"film"`
	SummaryState string         `json:"summary_state" enum:"idle,loading,loaded,failed"`
	Summary      *query.Summary `json:"summary,omitempty"`
	SummaryError string         `json:"summary_error,omitempty"`
	Slots        []SlotView     `json:"slots"`
}

func viewStatusOf(id uuid.UUID, st cache.Status) ViewStatus {
	out := ViewStatus{
		ID:           id.String(),
		Film:         st.Film,
		SummaryState: string(st.SummaryState),
		Summary:      st.Summary,
		SummaryError: st.SummaryError,
		Slots:        make([]SlotView, 0, len(st.Slots)),
	}
	for _, sl := range st.Slots {
		out.Slots = append(out.Slots, SlotView{
			Relation: string(sl.Relation),
			State:    string(sl.State),
			Count:    len(sl.Entities),
			Error:    sl.Error,
		})
	}
	return out
}

type viewIDInput struct {
	ID string `path:"id" format:"uuid" doc:"View ID"`
}

type viewStatusOutput struct {
	Body ViewStatus
}

type selectFilmInput struct {
	ID   string `path:"id" format:"uuid" doc:"View ID"`
	Body struct {
		Film string `json:"film" minLength:"1" doc:"Film identity URL"`
	}
}

type viewSummaryInput struct {
	ID    string `path:"id" format:"uuid" doc:"View ID"`
	Force bool   `query:"force" doc:"Reload even when cached"`
}

type viewRelationshipsInput struct {
	ID       string `path:"id" format:"uuid" doc:"View ID"`
	Relation string `path:"relation" enum:"characters,planets,species,starships,vehicles"`
	Force    bool   `query:"force" doc:"Reload even when cached"`
}

func (s *Server) view(id string) (uuid.UUID, *cache.Cache, error) {
	vid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, nil, huma.Error400BadRequest("invalid view id", err)
	}
	c, err := s.services.views.Get(vid)
	if err != nil {
		return uuid.Nil, nil, s.apiError(err, "view not found")
	}
	return vid, c, nil
}

func (s *Server) handleOpenView(_ context.Context, _ *struct{}) (*viewStatusOutput, error) {
	id, c, err := s.services.views.Open()
	if err != nil {
		return nil, s.apiError(err, "opening view")
	}
	return &viewStatusOutput{Body: viewStatusOf(id, c.Status())}, nil
}

func (s *Server) handleGetView(_ context.Context, input *viewIDInput) (*viewStatusOutput, error) {
	id, c, err := s.view(input.ID)
	if err != nil {
		return nil, err
	}
	return &viewStatusOutput{Body: viewStatusOf(id, c.Status())}, nil
}

func (s *Server) handleSelectFilm(ctx context.Context, input *selectFilmInput) (*viewStatusOutput, error) {
	id, c, err := s.view(input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.services.query.Film(ctx, input.Body.Film); err != nil {
		return nil, s.apiError(err, "selecting film")
	}
	if err := c.Select(input.Body.Film); err != nil {
		return nil, s.apiError(err, "selecting film")
	}
	return &viewStatusOutput{Body: viewStatusOf(id, c.Status())}, nil
}

func (s *Server) handleViewSummary(ctx context.Context, input *viewSummaryInput) (*summaryOutput, error) {
	_, c, err := s.view(input.ID)
	if err != nil {
		return nil, err
	}
	sum, err := c.Summary(ctx, input.Force)
	if err != nil {
		return nil, s.apiError(err, "loading view summary")
	}
	return &summaryOutput{Body: sum}, nil
}

func (s *Server) handleViewRelationships(ctx context.Context, input *viewRelationshipsInput) (*relationshipsOutput, error) {
	_, c, err := s.view(input.ID)
	if err != nil {
		return nil, err
	}
	rel, err := query.ParseRelation(input.Relation)
	if err != nil {
		return nil, s.apiError(err, "parsing relation")
	}
	film, details, err := c.Listing(ctx, rel, input.Force)
	if err != nil {
		return nil, s.apiError(err, "loading view relationships")
	}
	out := &relationshipsOutput{}
	out.Body.Film = film
	out.Body.Relation = string(rel)
	out.Body.Entities = entitiesOf(details)
	return out, nil
}

func (s *Server) handleCloseView(_ context.Context, input *viewIDInput) (*struct{}, error) {
	vid, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid view id", err)
	}
	if err := s.services.views.Close(vid); err != nil {
		return nil, s.apiError(err, "closing view")
	}
	return nil, nil
}
