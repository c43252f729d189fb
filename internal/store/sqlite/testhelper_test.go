// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holocron-dev/holocron/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// testDir creates a temp directory for a test and returns cleanup func.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "holocron-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

func openTestStore(t *testing.T, name string) *sqlite.EntityStore {
	t.Helper()
	return openStoreAt(t, testDBPath(t, name))
}

func openStoreAt(t *testing.T, path string) *sqlite.EntityStore {
	t.Helper()
	s, err := sqlite.NewEntityStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }
