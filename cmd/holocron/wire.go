// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/holocron-dev/holocron/internal/cache"
	"github.com/holocron-dev/holocron/internal/config"
	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/server"
	"github.com/holocron-dev/holocron/internal/snapshot"
	"github.com/holocron-dev/holocron/internal/store"
	_ "github.com/holocron-dev/holocron/internal/store/sqlite" // register sqlite backend
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Engine holds all wired subsystems and manages their lifecycle.
type Engine struct {
	Store    store.EntityStore
	Metrics  *metrics.Metrics
	Broker   *notify.Broker
	Importer *importer.Importer
	Query    *query.Service
	Views    *cache.Pool
	logger   *slog.Logger
}

// WireEngine opens the store and wires the importer, query service, change
// broker and view pool around it.
func WireEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, holoerr.Errorf(holoerr.CodeCLISetupFailure, "creating data directory: %w", err)
		}
	}

	st, err := store.Open(cfg.StoreConfig())
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeCLISetupFailure, "opening store %s", cfg.Storage.Path)
	}

	m, err := metrics.New()
	if err != nil {
		_ = st.Close()
		return nil, holoerr.Wrapf(err, holoerr.CodeCLISetupFailure, "creating metrics")
	}

	broker := notify.NewBroker(notify.WithLogger(logger), notify.WithMetrics(m))
	q := query.New(st, query.WithWorkers(cfg.Query.HydrationWorkers), query.WithLogger(logger))

	return &Engine{
		Store:   st,
		Metrics: m,
		Broker:  broker,
		Importer: importer.New(st,
			importer.WithPublisher(broker),
			importer.WithLogger(logger),
			importer.WithMetrics(m),
		),
		Query:  q,
		Views:  cache.NewPool(q, broker, cache.WithLogger(logger), cache.WithMetrics(m)),
		logger: logger,
	}, nil
}

// ImportFile loads the snapshot at path and replaces the store contents.
func (e *Engine) ImportFile(ctx context.Context, path string) (*importer.Report, error) {
	snap, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("snapshot loaded", slog.String("path", path))
	return e.Importer.Import(ctx, snap)
}

// Server builds the HTTP server over the engine's services.
func (e *Engine) Server(cfg *config.Config) (*server.Server, error) {
	svc, err := server.NewServices(e.Query, e.Importer, e.Views, e.Broker)
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeCLISetupFailure, "creating services")
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		Metrics:     e.Metrics,
		Logger:      e.logger,
	})
	if err != nil {
		return nil, holoerr.Wrapf(err, holoerr.CodeCLISetupFailure, "creating server")
	}
	srv.RegisterServices(svc)
	return srv, nil
}

// Close releases all resources held by the engine. The broker closes first
// so view watchers stop before the pool tears down their caches.
func (e *Engine) Close() error {
	e.Broker.Close()
	e.Views.Shutdown()
	return e.Store.Close()
}
