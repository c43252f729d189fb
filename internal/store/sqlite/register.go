// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite

import (
	"os"
	"path/filepath"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

func init() {
	store.RegisterBackend("sqlite", newEntityStore)
}

func newEntityStore(path string) (store.EntityStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "creating database directory: %w", err)
		}
	}
	return NewEntityStore(path)
}
