// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/holocron-dev/holocron/internal/config"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// app carries the state resolved by the root command's pre-run hook.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd creates the root holocron command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "holocron",
		Short:         "Holocron: film relationship store",
		Long:          "Holocron imports film snapshots into a normalized store and serves their relationships.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	// Global flags. --db maps to storage.path via init.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("db", "", "path to the entity database")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newImportCmd(a),
		newServeCmd(a),
		newSummaryCmd(a),
		newRelationshipsCmd(a),
		newStatsCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)

	return root
}

// init binds flags and loads configuration with the standard precedence
// (flag > env > file > defaults), then installs the logger.
func (a *app) init(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	if err := a.v.BindPFlag("storage.path", flags.Lookup("db")); err != nil {
		return holoerr.Errorf(holoerr.CodeCLISetupFailure, "binding db flag: %w", err)
	}
	if err := a.v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return holoerr.Errorf(holoerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}
	if err := bindLocalFlags(a.v, cmd); err != nil {
		return err
	}

	explicit, _ := flags.GetString("config")
	path := config.ResolvePath(explicit)
	if path == "" {
		// No config found anywhere. Bootstrap a default to ~/.config/holocron/.
		if def, err := config.DefaultConfigPath(); err == nil {
			path = config.BootstrapConfig(def)
		}
	}
	config.WarnInsecurePermissions(path)

	cfg, err := config.LoadWith(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log, a.v.GetBool("verbose"))
	slog.SetDefault(a.logger)
	return nil
}

// configKeyAnnotation names the viper key a local flag overrides.
const configKeyAnnotation = "holocron/config-key"

func bindLocalFlags(v *viper.Viper, cmd *cobra.Command) error {
	var err error
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if err != nil || len(keys) == 0 {
			return
		}
		if bindErr := v.BindPFlag(keys[0], f); bindErr != nil {
			err = holoerr.Errorf(holoerr.CodeCLISetupFailure, "binding %s flag: %w", f.Name, bindErr)
		}
	})
	return err
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
