// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

//go:build !windows

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestWarnInsecurePermissions(t *testing.T) {
	tests := []struct {
		name       string
		perm       os.FileMode
		expectWarn bool
	}{
		{name: "owner only 0600", perm: 0o600},
		{name: "world readable 0644", perm: 0o644},
		{name: "read only 0444", perm: 0o444},
		{name: "group writable 0664", perm: 0o664, expectWarn: true},
		{name: "other writable 0646", perm: 0o646, expectWarn: true},
		{name: "everyone 0666", perm: 0o666, expectWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "holocron.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: info\n"), 0o600))
			// WriteFile is subject to the umask; set the mode explicitly.
			require.NoError(t, os.Chmod(configPath, tt.perm))

			buf := captureLogs(t)
			WarnInsecurePermissions(configPath)
			out := buf.String()

			if tt.expectWarn {
				assert.Contains(t, out, "insecure permissions")
				assert.Contains(t, out, configPath)
				assert.Contains(t, out, "0644")
			} else {
				assert.NotContains(t, out, "insecure permissions")
			}
		})
	}
}

func TestWarnInsecurePermissions_EmptyPath(t *testing.T) {
	buf := captureLogs(t)
	WarnInsecurePermissions("")
	assert.Empty(t, buf.String())
}

func TestWarnInsecurePermissions_MissingFile(t *testing.T) {
	buf := captureLogs(t)
	WarnInsecurePermissions("/nonexistent/path/holocron.yaml")
	out := buf.String()
	assert.Contains(t, out, "could not stat")
	assert.NotContains(t, out, "insecure permissions")
}
