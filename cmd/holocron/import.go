// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/store"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the store contents with a snapshot",
		Long: "Load a snapshot file (.json, .yaml or .yml) and reseed the entity store from it " +
			"in one transaction. The previous contents are kept if anything fails.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, err := WireEngine(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().Bool("json", false, "print the import report as JSON")

	return cmd
}

func printReport(out io.Writer, r *importer.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TABLE\tROWS")
	for _, k := range store.Kinds() {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", k, r.Entities[k])
	}
	pivots := make([]string, 0, len(r.Pivots))
	for name := range r.Pivots {
		pivots = append(pivots, name)
	}
	slices.Sort(pivots)
	for _, name := range pivots {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", name, r.Pivots[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\n%d duplicate edges absorbed, %d dangling references skipped in %s\n",
		r.Duplicates, r.Dangling, r.Elapsed.Round(time.Millisecond))
	if err != nil {
		return err
	}
	if r.Batch != nil {
		_, err = fmt.Fprintf(out, "change batch %s\n", r.Batch.ID)
	}
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
