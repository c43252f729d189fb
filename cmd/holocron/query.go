// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/store"
)

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary FILM_URL",
		Short: "Show the relationship counts of a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, err := WireEngine(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			sum, err := eng.Query.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "RELATION\tCOUNT")
			for _, rel := range query.Relations() {
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", rel, sum.Count(rel))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Bool("json", false, "print the summary as JSON")

	return cmd
}

func newRelationshipsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relationships FILM_URL RELATION",
		Short: "List the entities one relationship of a film reaches",
		Long: "List the hydrated entities of a film relationship. RELATION is one of " +
			"characters, planets, species, starships or vehicles.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			rel, err := query.ParseRelation(args[1])
			if err != nil {
				return err
			}

			eng, err := WireEngine(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			details, err := eng.Query.Entities(cmd.Context(), args[0], rel)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), details)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tURL")
			for _, d := range details {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", d.DisplayName(), d.Identity())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Bool("json", false, "print the hydrated entities as JSON")

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts of every entity and pivot table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := WireEngine(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			ctx := cmd.Context()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TABLE\tROWS")
			for _, k := range store.Kinds() {
				n, err := eng.Store.Count(ctx, k)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", k, n)
			}
			for _, p := range store.Pivots() {
				n, err := eng.Store.PivotCount(ctx, p)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", p, n)
			}
			return tw.Flush()
		},
	}
}
