// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package snapshot

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/holocron-dev/holocron/internal/store"
)

// DateLayout is the release date format used by snapshots.
const DateLayout = "2006-01-02"

// numericField trims thousands separators and reduces "30-165" style ranges
// to their lower bound. Anything left that is not a number is rejected.
func numericField(raw string) (string, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return "", false
	}
	if i := strings.Index(s[1:], "-"); i >= 0 {
		s = strings.TrimSpace(s[:i+1])
	}
	return s, true
}

// ParseFloat returns the numeric value of a raw field, or nil for values such
// as "unknown", "n/a" or "none".
func ParseFloat(raw string) *float64 {
	s, ok := numericField(raw)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseInt is ParseFloat for whole quantities. Fractions are truncated.
func ParseInt(raw string) *int64 {
	s, ok := numericField(raw)
	if !ok {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	// float64(MaxInt64) rounds up to 2^63, which is already out of range.
	f := ParseFloat(s)
	if f == nil || *f >= math.MaxInt64 || *f < math.MinInt64 {
		return nil
	}
	v := int64(*f)
	return &v
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(raw string) *time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &t
}

// ParseGender maps a raw gender string onto the closed enum. Unrecognized
// values, "n/a" included, become unknown.
func ParseGender(raw string) store.Gender {
	switch g := store.Gender(strings.ToLower(strings.TrimSpace(raw))); g {
	case store.GenderMale, store.GenderFemale, store.GenderHermaphrodite, store.GenderNone:
		return g
	default:
		return store.GenderUnknown
	}
}
