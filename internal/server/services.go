// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package server

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/internal/cache"
	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/snapshot"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// QueryService is the read side. *query.Service implements it.
type QueryService interface {
	Films(ctx context.Context) ([]*query.FilmDetail, error)
	Film(ctx context.Context, filmURL string) (*query.FilmDetail, error)
	Summary(ctx context.Context, filmURL string) (query.Summary, error)
	Entities(ctx context.Context, filmURL string, rel query.Relation) ([]query.Detail, error)
}

// ImportService replaces the store from a snapshot. *importer.Importer
// implements it.
type ImportService interface {
	Import(ctx context.Context, snap *snapshot.Snapshot) (*importer.Report, error)
}

// ViewService hands out relationship caches by view ID. *cache.Pool
// implements it.
type ViewService interface {
	Open() (uuid.UUID, *cache.Cache, error)
	Get(id uuid.UUID) (*cache.Cache, error)
	Close(id uuid.UUID) error
}

// ChangeService is the post-commit change stream. *notify.Broker implements
// it.
type ChangeService interface {
	Subscribe() (*notify.Subscription, error)
}

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
// Use NewServices constructor to ensure all required services are provided.
type Services struct {
	query    QueryService
	importer ImportService
	views    ViewService
	changes  ChangeService
}

// NewServices creates a Services instance with validation.
// Returns an error if any required service is nil.
func NewServices(q QueryService, imp ImportService, views ViewService, changes ChangeService) (*Services, error) {
	if q == nil {
		return nil, holoerr.New(holoerr.CodeServerConfigInvalid, "query service is required")
	}
	if imp == nil {
		return nil, holoerr.New(holoerr.CodeServerConfigInvalid, "import service is required")
	}
	if views == nil {
		return nil, holoerr.New(holoerr.CodeServerConfigInvalid, "view service is required")
	}
	if changes == nil {
		return nil, holoerr.New(holoerr.CodeServerConfigInvalid, "change service is required")
	}
	return &Services{query: q, importer: imp, views: views, changes: changes}, nil
}

func (s *Services) Query() QueryService    { return s.query }
func (s *Services) Importer() ImportService { return s.importer }
func (s *Services) Views() ViewService      { return s.views }
func (s *Services) Changes() ChangeService  { return s.changes }

// codeOf finds the code of err, looking through the struct error types the
// importer and cache return before falling back to the oops chain.
func codeOf(err error) holoerr.Code {
	if ierr, ok := importer.AsError(err); ok {
		return ierr.Code
	}
	var ferr *cache.FetchError
	if errors.As(err, &ferr) {
		if ferr.Cancelled() {
			return ferr.Code
		}
		if inner := holoerr.CodeOf(ferr.Err); inner != "" {
			return inner
		}
		return ferr.Code
	}
	return holoerr.CodeOf(err)
}
