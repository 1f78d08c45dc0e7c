package geocode

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteCache persists geocode results across runs using modernc.org/sqlite.
type SQLiteCache struct {
	db *sql.DB
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	address      TEXT NOT NULL,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	matched      INTEGER NOT NULL,
	source       TEXT NOT NULL,
	refined      TEXT,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NewSQLiteCache opens (or creates) a cache database at the given path
// and configures WAL mode.
func NewSQLiteCache(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geocode cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocode cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocode cache: migrate")
	}
	return &SQLiteCache{db: db}, nil
}

// Get implements Cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	var r Result
	var matched int
	var refined sql.NullString

	row := c.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, matched, source, refined FROM geocode_cache WHERE address_hash = ?`,
		key,
	)
	if err := row.Scan(&r.Latitude, &r.Longitude, &matched, &r.Source, &refined); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocode cache: get")
	}
	r.Matched = matched != 0
	if refined.Valid {
		r.Refined = refined.String
	}
	return &r, true, nil
}

// Put implements Cache.
func (c *SQLiteCache) Put(ctx context.Context, key, address string, result *Result) error {
	matched := 0
	if result.Matched {
		matched = 1
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, address, latitude, longitude, matched, source, refined, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			matched = excluded.matched,
			source = excluded.source,
			refined = excluded.refined,
			cached_at = datetime('now')`,
		key, address, result.Latitude, result.Longitude, matched, result.Source, nilIfEmpty(result.Refined),
	)
	return eris.Wrap(err, "geocode cache: put")
}

// Close implements Cache.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// nilIfEmpty returns nil for empty strings, allowing NULL storage.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
