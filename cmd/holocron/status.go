// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running server",
		Long:  "Check a running server's health endpoint and report how many films it serves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("address")
			if addr == "" {
				addr = a.cfg.Networking.Listen
			}
			return runStatus(cmd, addr)
		},
	}

	cmd.Flags().String("address", "", "server address to check (defaults to networking.listen)")

	return cmd
}

func runStatus(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	c := newAPIClient(addr)

	status, err := c.health(ctx)
	if err != nil {
		if errors.Is(err, ErrServerNotRunning) {
			_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, err)
		return nil
	}

	films, err := c.films(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Server at %s: %s (films: %s)\n", addr, status, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Server at %s: %s, %d films\n", addr, status, len(films))
	return nil
}
