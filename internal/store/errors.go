// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package store

import holoerr "github.com/holocron-dev/holocron/pkg/errors"

// NotFound builds the coded error backends return when a lookup misses.
func NotFound(kind Kind, url string) error {
	return holoerr.New(holoerr.CodeStoreEntityNotFound, string(kind)+" "+url+" not found",
		holoerr.FieldKind(string(kind)),
		holoerr.FieldURL(url),
	)
}

// IsNotFound reports whether err is a store lookup miss.
func IsNotFound(err error) bool {
	return holoerr.HasCode(err, holoerr.CodeStoreEntityNotFound)
}
