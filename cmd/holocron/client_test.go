// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

func newTestAPIClient(t *testing.T, h http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &apiClient{baseURL: srv.URL, http: srv.Client()}
}

func TestAPIClient_SurfacesProblemDetails(t *testing.T) {
	c := newTestAPIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(huma.ErrorModel{
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "listing films",
			Errors: []*huma.ErrorDetail{{Message: "database is locked"}},
		})
	})

	_, err := c.films(context.Background())
	require.Error(t, err)
	assert.True(t, holoerr.HasCode(err, holoerr.CodeCLIRequestFailure))
	assert.Contains(t, err.Error(), "server returned 500: listing films: database is locked")
	assert.Equal(t, http.StatusInternalServerError, holoerr.FieldsOf(err)["status"])
}

func TestAPIClient_NonProblemBody(t *testing.T) {
	c := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.health(context.Background())
	require.Error(t, err)
	assert.True(t, holoerr.HasCode(err, holoerr.CodeCLIRequestFailure))
	assert.Contains(t, err.Error(), "/health: server returned 404 Not Found")
}

func TestAPIClient_DecodesFilms(t *testing.T) {
	c := newTestAPIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"films":[{"url":"https://swapi.dev/api/films/1/","title":"A New Hope","counts":{"characters":2}}]}`))
	})

	films, err := c.films(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, "A New Hope", films[0].Title)
	assert.Equal(t, 2, films[0].Counts.Characters)
}

func TestAPIClient_ServerDown(t *testing.T) {
	c := &apiClient{baseURL: "http://127.0.0.1:1", http: defaultHTTPClient}
	_, err := c.health(context.Background())
	assert.ErrorIs(t, err, ErrServerNotRunning)
}
