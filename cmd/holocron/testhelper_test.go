// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	newHope = "https://swapi.dev/api/films/1/"
	luke    = "https://swapi.dev/api/people/1/"
	leia    = "https://swapi.dev/api/people/5/"
)

const galaxyYAML = `
films:
  - url: https://swapi.dev/api/films/1/
    title: A New Hope
    episode_id: 4
    release_date: "1977-05-25"
    characters:
      - https://swapi.dev/api/people/1/
      - https://swapi.dev/api/people/5/
    planets: [https://swapi.dev/api/planets/1/]
  - url: https://swapi.dev/api/films/2/
    title: The Empire Strikes Back
    episode_id: 5
    release_date: "1980-05-17"
    characters: [https://swapi.dev/api/people/1/]
people:
  - url: https://swapi.dev/api/people/1/
    name: Luke Skywalker
    homeworld: https://swapi.dev/api/planets/1/
    films: [https://swapi.dev/api/films/1/, https://swapi.dev/api/films/2/]
  - url: https://swapi.dev/api/people/5/
    name: Leia Organa
    films: [https://swapi.dev/api/films/1/]
planets:
  - url: https://swapi.dev/api/planets/1/
    name: Tatooine
    population: "200000"
`

// isolate points HOME at a temp dir so config bootstrap never touches the
// real home directory, and returns a database path inside it.
func isolate(t *testing.T) (home, db string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HOLOCRON_STORAGE_PATH", "")
	t.Setenv("HOLOCRON_LOG_LEVEL", "")
	return home, filepath.Join(home, "data", "holocron.db")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, args...)
}

func executeContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}
