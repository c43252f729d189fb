// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package store

import "context"

// EntityStore holds the normalized entity tables and the pivot tables that
// record their many-to-many relationships. Writes only happen inside Update.
type EntityStore interface {
	Reader

	// Update runs fn inside a single transaction. If fn returns an error the
	// transaction is rolled back and the store is left as it was.
	Update(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Tx is the write surface available inside EntityStore.Update.
type Tx interface {
	// Upsert inserts rec or overwrites the existing row with the same
	// identity in place.
	Upsert(ctx context.Context, rec Record) error
	Find(ctx context.Context, kind Kind, url string) (Record, error)
	DeleteAll(ctx context.Context, kind Kind) error
	ClearPivot(ctx context.Context, p Pivot) error
	PivotExists(ctx context.Context, p Pivot, a, b string) (bool, error)
	AttachPivot(ctx context.Context, p Pivot, a, b string) error
}

// Reader is the read-only surface used by query services. Implementations
// must be safe for concurrent use.
type Reader interface {
	// View runs fn against a single consistent state of the store. Every
	// read made through the Reader passed to fn observes the same committed
	// state, whatever imports commit meanwhile.
	View(ctx context.Context, fn func(r Reader) error) error

	Find(ctx context.Context, kind Kind, url string) (Record, error)
	List(ctx context.Context, kind Kind) ([]Record, error)
	Count(ctx context.Context, kind Kind) (int, error)
	PivotCount(ctx context.Context, p Pivot) (int, error)
	PivotExists(ctx context.Context, p Pivot, a, b string) (bool, error)

	// Related returns the URLs on the opposite side of p for the entity
	// url of kind from.
	Related(ctx context.Context, p Pivot, from Kind, url string) ([]string, error)
	CountRelated(ctx context.Context, p Pivot, from Kind, url string) (int, error)

	// Residents returns the people whose homeworld is planetURL.
	Residents(ctx context.Context, planetURL string) ([]string, error)
	// NativeSpecies returns the species whose homeworld is planetURL.
	NativeSpecies(ctx context.Context, planetURL string) ([]string, error)
}
