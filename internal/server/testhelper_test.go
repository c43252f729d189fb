// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/internal/cache"
	"github.com/holocron-dev/holocron/internal/importer"
	"github.com/holocron-dev/holocron/internal/metrics"
	"github.com/holocron-dev/holocron/internal/notify"
	"github.com/holocron-dev/holocron/internal/query"
	"github.com/holocron-dev/holocron/internal/server"
	"github.com/holocron-dev/holocron/internal/store/sqlite"
)

const (
	newHope  = "https://swapi.dev/api/films/1/"
	empire   = "https://swapi.dev/api/films/2/"
	luke     = "https://swapi.dev/api/people/1/"
	leia     = "https://swapi.dev/api/people/5/"
	tatooine = "https://swapi.dev/api/planets/1/"
	human    = "https://swapi.dev/api/species/1/"
	xwing    = "https://swapi.dev/api/starships/12/"
	speeder  = "https://swapi.dev/api/vehicles/14/"
)

// galaxyJSON is a two-film snapshot. Leia appears in newHope only when
// withLeia is set.
func galaxyJSON(withLeia bool) []byte {
	newHopeCast := []string{luke}
	if withLeia {
		newHopeCast = append(newHopeCast, leia)
	}
	snap := map[string]any{
		"films": []map[string]any{
			{
				"url": newHope, "title": "A New Hope", "episode_id": 4, "release_date": "1977-05-25",
				"director": "George Lucas", "producer": "Gary Kurtz, Rick McCallum",
				"characters": newHopeCast, "planets": []string{tatooine}, "species": []string{human},
				"starships": []string{xwing}, "vehicles": []string{speeder},
			},
			{
				"url": empire, "title": "The Empire Strikes Back", "episode_id": 5, "release_date": "1980-05-17",
				"characters": []string{luke},
			},
		},
		"people": []map[string]any{
			{
				"url": luke, "name": "Luke Skywalker", "height": "172", "mass": "77", "gender": "male",
				"homeworld": tatooine, "films": []string{newHope, empire}, "species": []string{human},
				"starships": []string{xwing}, "vehicles": []string{speeder},
			},
			{"url": leia, "name": "Leia Organa", "gender": "female", "films": []string{newHope}},
		},
		"planets":   []map[string]any{{"url": tatooine, "name": "Tatooine", "population": "200000"}},
		"species":   []map[string]any{{"url": human, "name": "Human", "homeworld": "https://swapi.dev/api/planets/9/"}},
		"starships": []map[string]any{{"url": xwing, "name": "X-wing", "pilots": []string{luke}}},
		"vehicles":  []map[string]any{{"url": speeder, "name": "Snowspeeder", "pilots": []string{luke}}},
	}
	if !withLeia {
		snap["people"] = snap["people"].([]map[string]any)[:1]
	}
	data, err := json.Marshal(snap)
	if err != nil {
		panic(err)
	}
	return data
}

type stack struct {
	ts     *httptest.Server
	broker *notify.Broker
	pool   *cache.Pool
}

// newStack wires a server over a temp SQLite store the same way serve does.
func newStack(t *testing.T) *stack {
	t.Helper()

	st, err := sqlite.NewEntityStore(filepath.Join(t.TempDir(), "holocron.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m, err := metrics.New()
	require.NoError(t, err)

	broker := notify.NewBroker(notify.WithMetrics(m))
	imp := importer.New(st, importer.WithPublisher(broker), importer.WithMetrics(m))
	q := query.New(st)
	pool := cache.NewPool(q, broker, cache.WithMetrics(m))

	svc, err := server.NewServices(q, imp, pool, broker)
	require.NoError(t, err)
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0", Metrics: m})
	require.NoError(t, err)
	srv.RegisterServices(svc)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(pool.Shutdown)
	t.Cleanup(broker.Close)

	return &stack{ts: ts, broker: broker, pool: pool}
}

// do sends body (raw bytes or a value to encode as JSON) and decodes a JSON
// response into out when out is non-nil. It returns the status code.
func (s *stack) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.ts.URL+path, r)
	require.NoError(t, err)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *stack) importGalaxy(t *testing.T, withLeia bool) importResult {
	t.Helper()
	var res importResult
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/import", galaxyJSON(withLeia), &res))
	return res
}

type importResult struct {
	Entities   map[string]int `json:"entities"`
	Pivots     map[string]int `json:"pivots"`
	Duplicates int            `json:"duplicates_absorbed"`
	Dangling   int            `json:"dangling_skipped"`
	BatchID    string         `json:"batch_id"`
	Kinds      []string       `json:"kinds"`
}

type entity struct {
	Kind   string `json:"kind"`
	Person *struct {
		Name      string `json:"name"`
		Homeworld *struct {
			Name string `json:"name"`
		} `json:"homeworld"`
		Films []struct {
			Title string `json:"title"`
		} `json:"films"`
	} `json:"person"`
	Planet *struct {
		Name       string `json:"name"`
		Population *int64 `json:"population"`
	} `json:"planet"`
}

type relationships struct {
	Film     string   `json:"film"`
	Relation string   `json:"relation"`
	Entities []entity `json:"entities"`
}

type viewStatus struct {
	ID           string `json:"id"`
	Film         string `json:"film"`
	SummaryState string `json:"summary_state"`
	Slots        []struct {
		Relation string `json:"relation"`
		State    string `json:"state"`
		Count    int    `json:"count"`
	} `json:"slots"`
}

func (v viewStatus) slot(rel string) (state string, count int) {
	for _, s := range v.Slots {
		if s.Relation == rel {
			return s.State, s.Count
		}
	}
	return "", 0
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}
