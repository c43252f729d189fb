// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package store

// DefaultPath is used when StorageConfig.Path is empty.
const DefaultPath = "holocron.db"

// StorageConfig controls which backend Open uses.
type StorageConfig struct {
	Backend string // "sqlite" is the only supported backend for now.
	Path    string
}
