// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite

import (
	"context"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// knownPivots guards the table names interpolated into pivot SQL.
var knownPivots = func() map[store.Pivot]bool {
	m := make(map[store.Pivot]bool)
	for _, p := range store.Pivots() {
		m[p] = true
	}
	return m
}()

func validatePivot(p store.Pivot) error {
	if !knownPivots[p] {
		return holoerr.New(holoerr.CodeStoreInvalidInput, "unknown pivot "+p.Name)
	}
	return nil
}

// pivotColumns returns the column holding from's url and the column on the
// opposite side.
func pivotColumns(p store.Pivot, from store.Kind) (fromCol, toCol string, err error) {
	if err := validatePivot(p); err != nil {
		return "", "", err
	}
	to, ok := p.Other(from)
	if !ok {
		return "", "", holoerr.New(holoerr.CodeStoreInvalidInput,
			"kind "+string(from)+" does not participate in pivot "+p.Name,
			holoerr.FieldKind(string(from)),
		)
	}
	return string(from) + "_url", string(to) + "_url", nil
}

func pivotExists(ctx context.Context, q querier, p store.Pivot, a, b string) (bool, error) {
	if err := validatePivot(p); err != nil {
		return false, err
	}
	var n int
	stmt := `SELECT COUNT(*) FROM ` + p.Name + ` WHERE ` + string(p.A) + `_url = ? AND ` + string(p.B) + `_url = ?`
	if err := q.QueryRowContext(ctx, stmt, a, b).Scan(&n); err != nil {
		return false, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "checking pivot %s: %w", p.Name, err)
	}
	return n > 0, nil
}

// attachPivot inserts one (a, b) row. A repeated pair violates the primary
// key and surfaces as a database error.
func attachPivot(ctx context.Context, q querier, p store.Pivot, a, b string) error {
	if err := validatePivot(p); err != nil {
		return err
	}
	stmt := `INSERT INTO ` + p.Name + ` (` + string(p.A) + `_url, ` + string(p.B) + `_url) VALUES (?, ?)`
	if _, err := q.ExecContext(ctx, stmt, a, b); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "attaching %s (%s, %s): %w", p.Name, a, b, err)
	}
	return nil
}
