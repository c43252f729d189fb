// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package importer

import (
	"errors"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Error is returned by Import for every failure. The store is unchanged when
// an Error is returned.
//
// Code is either holoerr.CodeImportSnapshotInvalid (rejected before the
// transaction started) or holoerr.CodeImportTransactionFailure.
type Error struct {
	Code holoerr.Code
	Err  error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an import Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ie *Error
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
