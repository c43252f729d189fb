// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/holocron-dev/holocron/internal/store"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Compile-time interface checks.
var (
	_ store.EntityStore = (*EntityStore)(nil)
	_ store.Tx          = (*txStore)(nil)
	_ store.Reader      = snapshotReader{}
)

// querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn so lookups can run
// on the pool, inside an import transaction, or inside a read view.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EntityStore implements store.EntityStore backed by a single SQLite
// database holding one table per entity kind and one per pivot.
type EntityStore struct {
	reader
	db     *sql.DB
	logger *slog.Logger
}

// NewEntityStore opens (or creates) a SQLite database at dbPath and
// initialises the entity and pivot tables.
func NewEntityStore(dbPath string) (*EntityStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrateEntities(db); err != nil {
		_ = db.Close()
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "migrating entity tables: %w", err)
	}

	return &EntityStore{reader: reader{q: db}, db: db, logger: slog.Default()}, nil
}

func migrateEntities(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS films (
	url              TEXT PRIMARY KEY,
	title            TEXT NOT NULL DEFAULT '',
	episode_id       INTEGER NOT NULL DEFAULT 0,
	opening_crawl    TEXT NOT NULL DEFAULT '',
	director         TEXT NOT NULL DEFAULT '',
	producer         TEXT NOT NULL DEFAULT '',
	release_date_raw TEXT NOT NULL DEFAULT '',
	release_date     TEXT
);

CREATE TABLE IF NOT EXISTS people (
	url           TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	height        TEXT NOT NULL DEFAULT '',
	mass          TEXT NOT NULL DEFAULT '',
	hair_color    TEXT NOT NULL DEFAULT '',
	skin_color    TEXT NOT NULL DEFAULT '',
	eye_color     TEXT NOT NULL DEFAULT '',
	birth_year    TEXT NOT NULL DEFAULT '',
	gender_raw    TEXT NOT NULL DEFAULT '',
	homeworld_url TEXT NOT NULL DEFAULT '',
	height_cm     REAL,
	mass_kg       REAL,
	gender        TEXT NOT NULL DEFAULT 'unknown'
);

CREATE INDEX IF NOT EXISTS idx_people_homeworld ON people(homeworld_url);

CREATE TABLE IF NOT EXISTS planets (
	url               TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	rotation_period   TEXT NOT NULL DEFAULT '',
	orbital_period    TEXT NOT NULL DEFAULT '',
	diameter          TEXT NOT NULL DEFAULT '',
	climate           TEXT NOT NULL DEFAULT '',
	gravity           TEXT NOT NULL DEFAULT '',
	terrain           TEXT NOT NULL DEFAULT '',
	surface_water     TEXT NOT NULL DEFAULT '',
	population        TEXT NOT NULL DEFAULT '',
	rotation_hours    REAL,
	orbital_days      REAL,
	diameter_km       REAL,
	surface_water_pct REAL,
	population_count  INTEGER
);

CREATE TABLE IF NOT EXISTS species (
	url                    TEXT PRIMARY KEY,
	name                   TEXT NOT NULL DEFAULT '',
	classification         TEXT NOT NULL DEFAULT '',
	designation            TEXT NOT NULL DEFAULT '',
	average_height         TEXT NOT NULL DEFAULT '',
	average_lifespan       TEXT NOT NULL DEFAULT '',
	language               TEXT NOT NULL DEFAULT '',
	skin_colors            TEXT NOT NULL DEFAULT '',
	hair_colors            TEXT NOT NULL DEFAULT '',
	eye_colors             TEXT NOT NULL DEFAULT '',
	homeworld_url          TEXT NOT NULL DEFAULT '',
	average_height_cm      REAL,
	average_lifespan_years REAL
);

CREATE INDEX IF NOT EXISTS idx_species_homeworld ON species(homeworld_url);

CREATE TABLE IF NOT EXISTS starships (
	url                    TEXT PRIMARY KEY,
	name                   TEXT NOT NULL DEFAULT '',
	model                  TEXT NOT NULL DEFAULT '',
	manufacturer           TEXT NOT NULL DEFAULT '',
	cost_in_credits        TEXT NOT NULL DEFAULT '',
	length                 TEXT NOT NULL DEFAULT '',
	max_atmosphering_speed TEXT NOT NULL DEFAULT '',
	crew                   TEXT NOT NULL DEFAULT '',
	passengers             TEXT NOT NULL DEFAULT '',
	cargo_capacity         TEXT NOT NULL DEFAULT '',
	consumables            TEXT NOT NULL DEFAULT '',
	hyperdrive_rating_raw  TEXT NOT NULL DEFAULT '',
	mglt                   TEXT NOT NULL DEFAULT '',
	starship_class         TEXT NOT NULL DEFAULT '',
	cost_credits           INTEGER,
	length_m               REAL,
	hyperdrive_rating      REAL
);

CREATE TABLE IF NOT EXISTS vehicles (
	url                    TEXT PRIMARY KEY,
	name                   TEXT NOT NULL DEFAULT '',
	model                  TEXT NOT NULL DEFAULT '',
	manufacturer           TEXT NOT NULL DEFAULT '',
	cost_in_credits        TEXT NOT NULL DEFAULT '',
	length                 TEXT NOT NULL DEFAULT '',
	max_atmosphering_speed TEXT NOT NULL DEFAULT '',
	crew                   TEXT NOT NULL DEFAULT '',
	passengers             TEXT NOT NULL DEFAULT '',
	cargo_capacity         TEXT NOT NULL DEFAULT '',
	consumables            TEXT NOT NULL DEFAULT '',
	vehicle_class          TEXT NOT NULL DEFAULT '',
	cost_credits           INTEGER,
	length_m               REAL
);

CREATE TABLE IF NOT EXISTS film_characters (
	film_url   TEXT NOT NULL,
	person_url TEXT NOT NULL,
	PRIMARY KEY (film_url, person_url)
);
CREATE INDEX IF NOT EXISTS idx_film_characters_person ON film_characters(person_url);

CREATE TABLE IF NOT EXISTS film_planets (
	film_url   TEXT NOT NULL,
	planet_url TEXT NOT NULL,
	PRIMARY KEY (film_url, planet_url)
);
CREATE INDEX IF NOT EXISTS idx_film_planets_planet ON film_planets(planet_url);

CREATE TABLE IF NOT EXISTS film_species (
	film_url    TEXT NOT NULL,
	species_url TEXT NOT NULL,
	PRIMARY KEY (film_url, species_url)
);
CREATE INDEX IF NOT EXISTS idx_film_species_species ON film_species(species_url);

CREATE TABLE IF NOT EXISTS film_starships (
	film_url     TEXT NOT NULL,
	starship_url TEXT NOT NULL,
	PRIMARY KEY (film_url, starship_url)
);
CREATE INDEX IF NOT EXISTS idx_film_starships_starship ON film_starships(starship_url);

CREATE TABLE IF NOT EXISTS film_vehicles (
	film_url    TEXT NOT NULL,
	vehicle_url TEXT NOT NULL,
	PRIMARY KEY (film_url, vehicle_url)
);
CREATE INDEX IF NOT EXISTS idx_film_vehicles_vehicle ON film_vehicles(vehicle_url);

CREATE TABLE IF NOT EXISTS person_species (
	person_url  TEXT NOT NULL,
	species_url TEXT NOT NULL,
	PRIMARY KEY (person_url, species_url)
);
CREATE INDEX IF NOT EXISTS idx_person_species_species ON person_species(species_url);

CREATE TABLE IF NOT EXISTS person_starships (
	person_url   TEXT NOT NULL,
	starship_url TEXT NOT NULL,
	PRIMARY KEY (person_url, starship_url)
);
CREATE INDEX IF NOT EXISTS idx_person_starships_starship ON person_starships(starship_url);

CREATE TABLE IF NOT EXISTS person_vehicles (
	person_url  TEXT NOT NULL,
	vehicle_url TEXT NOT NULL,
	PRIMARY KEY (person_url, vehicle_url)
);
CREATE INDEX IF NOT EXISTS idx_person_vehicles_vehicle ON person_vehicles(vehicle_url);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *EntityStore) Close() error {
	return s.db.Close()
}

// Update runs fn inside one transaction. The deferred rollback is a no-op
// after a successful commit.
func (s *EntityStore) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&txStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "committing transaction: %w", err)
	}
	return nil
}

// txStore is the store.Tx handed to Update callbacks.
type txStore struct {
	q querier
}

func (t *txStore) Upsert(ctx context.Context, rec store.Record) error {
	return upsertRecord(ctx, t.q, rec)
}

func (t *txStore) Find(ctx context.Context, kind store.Kind, url string) (store.Record, error) {
	return findRecord(ctx, t.q, kind, url)
}

func (t *txStore) DeleteAll(ctx context.Context, kind store.Kind) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "deleting %s: %w", table, err)
	}
	return nil
}

func (t *txStore) ClearPivot(ctx context.Context, p store.Pivot) error {
	if err := validatePivot(p); err != nil {
		return err
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM `+p.Name); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "clearing pivot %s: %w", p.Name, err)
	}
	return nil
}

func (t *txStore) PivotExists(ctx context.Context, p store.Pivot, a, b string) (bool, error) {
	return pivotExists(ctx, t.q, p, a, b)
}

func (t *txStore) AttachPivot(ctx context.Context, p store.Pivot, a, b string) error {
	return attachPivot(ctx, t.q, p, a, b)
}

// --- Reader ---

// reader implements the store.Reader lookups over q. On the EntityStore q is
// the connection pool, so every call sees the latest committed state.
type reader struct {
	q querier
}

// View runs fn against one read transaction on a dedicated connection. In
// WAL mode the transaction keeps the committed state it first reads, so fn
// sees either all of a concurrent import or none of it. Imports are not
// blocked while a view is open.
func (s *EntityStore) View(ctx context.Context, fn func(r store.Reader) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "acquiring read connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// DEFERRED takes no write lock, unlike the pool's immediate txlock.
	if _, err := conn.ExecContext(ctx, "BEGIN DEFERRED"); err != nil {
		return holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "beginning read transaction: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); err != nil {
			s.logger.Warn("ending read transaction", slog.Any("error", err))
		}
	}()

	return fn(snapshotReader{reader{q: conn}})
}

// snapshotReader is the store.Reader handed to View callbacks. Nested views
// reuse the enclosing transaction.
type snapshotReader struct {
	reader
}

func (r snapshotReader) View(_ context.Context, fn func(r store.Reader) error) error {
	return fn(r)
}

func (r reader) Find(ctx context.Context, kind store.Kind, url string) (store.Record, error) {
	return findRecord(ctx, r.q, kind, url)
}

func (r reader) List(ctx context.Context, kind store.Kind) ([]store.Record, error) {
	return listRecords(ctx, r.q, kind)
}

func (r reader) Count(ctx context.Context, kind store.Kind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "counting %s: %w", table, err)
	}
	return n, nil
}

func (r reader) PivotCount(ctx context.Context, p store.Pivot) (int, error) {
	if err := validatePivot(p); err != nil {
		return 0, err
	}
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+p.Name).Scan(&n); err != nil {
		return 0, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "counting pivot %s: %w", p.Name, err)
	}
	return n, nil
}

func (r reader) PivotExists(ctx context.Context, p store.Pivot, a, b string) (bool, error) {
	return pivotExists(ctx, r.q, p, a, b)
}

func (r reader) Related(ctx context.Context, p store.Pivot, from store.Kind, url string) ([]string, error) {
	fromCol, toCol, err := pivotColumns(p, from)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + toCol + ` FROM ` + p.Name + ` WHERE ` + fromCol + ` = ? ORDER BY ` + toCol
	return r.urls(ctx, q, url)
}

func (r reader) CountRelated(ctx context.Context, p store.Pivot, from store.Kind, url string) (int, error) {
	fromCol, _, err := pivotColumns(p, from)
	if err != nil {
		return 0, err
	}
	var n int
	q := `SELECT COUNT(*) FROM ` + p.Name + ` WHERE ` + fromCol + ` = ?`
	if err := r.q.QueryRowContext(ctx, q, url).Scan(&n); err != nil {
		return 0, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "counting %s for %s: %w", p.Name, url, err)
	}
	return n, nil
}

func (r reader) Residents(ctx context.Context, planetURL string) ([]string, error) {
	return r.urls(ctx, `SELECT url FROM people WHERE homeworld_url = ? ORDER BY url`, planetURL)
}

func (r reader) NativeSpecies(ctx context.Context, planetURL string) ([]string, error) {
	return r.urls(ctx, `SELECT url FROM species WHERE homeworld_url = ? ORDER BY url`, planetURL)
}

func (r reader) urls(ctx context.Context, q string, arg string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "querying related urls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "scanning related url: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, holoerr.Errorf(holoerr.CodeStoreDatabaseFailure, "iterating related urls: %w", err)
	}
	return out, nil
}
