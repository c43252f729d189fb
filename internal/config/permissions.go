// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file can be
// modified by group or other users. The file decides which database is
// opened and which snapshot replaces its contents at boot.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	mode := info.Mode()
	perm := mode.Perm()

	const groupWrite fs.FileMode = 0o020
	const otherWrite fs.FileMode = 0o002

	if perm&(groupWrite|otherWrite) != 0 {
		slog.Warn(
			"config file has insecure permissions, other users can change storage and snapshot paths",
			"path", path,
			"mode", mode,
			"recommended", "0644",
		)
	}
}
