// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

//go:embed holocron.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/holocron/holocron.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", holoerr.Errorf(holoerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "holocron", "holocron.yaml"), nil
}

// ResolvePath returns explicit when set, otherwise the default config path
// if a file exists there, otherwise "" (defaults and environment only).
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	p, err := DefaultConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// BootstrapConfig writes the default commented config to path if it does not
// already exist. Returns the path written, or empty string if the file already
// existed or an error occurred (non-fatal, logged and skipped).
func BootstrapConfig(path string) string {
	if _, err := os.Stat(path); err == nil {
		return ""
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", path, "error", err)
		return ""
	}

	slog.Info("created default config", "path", path)
	return path
}
