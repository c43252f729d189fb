// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holocron-dev/holocron/internal/config"
	"github.com/holocron-dev/holocron/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: "Open the store, optionally import a snapshot, and serve the relationship API " +
			"until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, a.cfg, a.logger)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().String("snapshot", "", "snapshot file to import before serving")
	_ = cmd.Flags().SetAnnotation("listen", configKeyAnnotation, []string{"networking.listen"})
	_ = cmd.Flags().SetAnnotation("snapshot", configKeyAnnotation, []string{"snapshot.path"})

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	eng, err := WireEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if cfg.Snapshot.Path != "" {
		report, err := eng.ImportFile(ctx, cfg.Snapshot.Path)
		if err != nil {
			return err
		}
		logger.Info("boot snapshot imported",
			slog.String("path", cfg.Snapshot.Path),
			slog.Int("films", report.Entities[store.KindFilm]),
		)
	}

	srv, err := eng.Server(cfg)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Serving holocron on %s\n", cfg.Networking.Listen); err != nil {
		return err
	}
	return srv.Start(ctx)
}
