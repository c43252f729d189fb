// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package query

import (
	"cmp"
	"slices"
	"strings"
)

// compareNames orders case-insensitively, falling back to the URL so the
// order is total.
func compareNames(aName, aURL, bName, bURL string) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(aName), strings.ToLower(bName)),
		strings.Compare(aURL, bURL),
	)
}

func sortByName[T any](items []T, key func(T) (name, url string)) {
	slices.SortStableFunc(items, func(a, b T) int {
		an, au := key(a)
		bn, bu := key(b)
		return compareNames(an, au, bn, bu)
	})
}

func sortDetails(details []Detail) {
	slices.SortStableFunc(details, func(a, b Detail) int {
		return compareNames(a.DisplayName(), a.Identity(), b.DisplayName(), b.Identity())
	})
}

// CompareFilms orders films by release date ascending with undated films
// last, then by episode, then by title case-insensitively.
func CompareFilms(a, b FilmInfo) int {
	switch {
	case a.ReleaseDate != nil && b.ReleaseDate == nil:
		return -1
	case a.ReleaseDate == nil && b.ReleaseDate != nil:
		return 1
	case a.ReleaseDate != nil && b.ReleaseDate != nil:
		if c := a.ReleaseDate.Compare(*b.ReleaseDate); c != 0 {
			return c
		}
	}
	return cmp.Or(
		cmp.Compare(a.EpisodeID, b.EpisodeID),
		compareNames(a.Title, a.URL, b.Title, b.URL),
	)
}

func sortFilms(films []FilmInfo) {
	slices.SortStableFunc(films, CompareFilms)
}

func sortFilmDetails(films []*FilmDetail) {
	slices.SortStableFunc(films, func(a, b *FilmDetail) int {
		return CompareFilms(a.FilmInfo, b.FilmInfo)
	})
}
