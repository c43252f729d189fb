// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package store

import (
	"sync"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Factory opens an EntityStore at the given location.
type Factory func(path string) (EntityStore, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return "sqlite"
	}
	return cfg.Backend
}

// Open creates the EntityStore described by cfg.
func Open(cfg *StorageConfig) (EntityStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, holoerr.Errorf(holoerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return factory(path)
}
