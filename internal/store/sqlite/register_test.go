// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
	}{
		{name: "explicit backend", backend: "sqlite"},
		{name: "default backend", backend: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(testDir(t), "nested", "dir", "holocron.db")

			s, err := store.Open(&store.StorageConfig{Backend: tt.backend, Path: path})
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			_, err = os.Stat(path)
			require.NoError(t, err, "database file should be created with its parent directories")

			n, err := s.Count(context.Background(), store.KindFilm)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	s, err := store.Open(&store.StorageConfig{Backend: "postgres", Path: testDBPath(t, "pg")})
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, holoerr.HasCode(err, holoerr.CodeStoreBackendUnsupported))
	assert.Contains(t, err.Error(), "postgres")
}

func TestOpen_PathIsDirectory(t *testing.T) {
	dir := testDir(t)
	path := filepath.Join(dir, "taken.db")
	require.NoError(t, os.Mkdir(path, 0o755))

	s, err := store.Open(&store.StorageConfig{Backend: "sqlite", Path: path})
	require.Error(t, err)
	assert.Nil(t, s)
}
