// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/internal/cache"
	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/server"
	"github.com/holocron-dev/holocron/internal/snapshot"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	// Handlers are never invoked during spec generation.
	svc, err := server.NewServices(stubQuery{}, stubImport{}, stubViews{}, stubChanges{})
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeCLISetupFailure, "creating services")
	}

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, holoerr.Errorf(holoerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	srv.RegisterServices(svc)

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// No-op service stubs for spec generation.

type stubQuery struct{}

func (stubQuery) Films(context.Context) ([]*query.FilmDetail, error)      { return nil, nil }
func (stubQuery) Film(context.Context, string) (*query.FilmDetail, error) { return nil, nil }
func (stubQuery) Summary(context.Context, string) (query.Summary, error)  { return query.Summary{}, nil }
func (stubQuery) Entities(context.Context, string, query.Relation) ([]query.Detail, error) {
	return nil, nil
}

type stubImport struct{}

func (stubImport) Import(context.Context, *snapshot.Snapshot) (*importer.Report, error) {
	return nil, nil
}

type stubViews struct{}

func (stubViews) Open() (uuid.UUID, *cache.Cache, error) { return uuid.Nil, nil, nil }
func (stubViews) Get(uuid.UUID) (*cache.Cache, error)    { return nil, nil }
func (stubViews) Close(uuid.UUID) error                  { return nil }

type stubChanges struct{}

func (stubChanges) Subscribe() (*notify.Subscription, error) { return nil, nil }
