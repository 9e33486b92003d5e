package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// migration represents a single schema migration step.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations for the entry store.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    key        TEXT PRIMARY KEY,
    resource   TEXT NOT NULL,
    payload    BLOB NOT NULL,
    fetched_at INTEGER NOT NULL,
    stale      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_resource ON entries(resource);

INSERT INTO schema_version (version, applied_at) VALUES (1, strftime('%s', 'now'));
`,
	},
}

// entry is one cached query result. Payload is the JSON-encoded value.
type entry struct {
	Key       string `db:"key"`
	Resource  string `db:"resource"`
	Payload   []byte `db:"payload"`
	FetchedAt int64  `db:"fetched_at"`
	Stale     bool   `db:"stale"`
}

func (e entry) fetchedAt() time.Time {
	return time.Unix(0, e.FetchedAt)
}

// Store keeps cache entries in an in-memory SQLite database. Nothing is
// written to disk; the database disappears with the process.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens a private in-memory database and applies the schema.
func OpenStore() (*Store, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// put inserts or replaces the entry for key.
func (s *Store) put(ctx context.Context, e entry) error {
	const query = `
		INSERT OR REPLACE INTO entries (key, resource, payload, fetched_at, stale)
		VALUES (:key, :resource, :payload, :fetched_at, :stale)`

	if _, err := s.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("storing entry %s: %w", e.Key, err)
	}
	return nil
}

// get returns the entry for key; ok is false when there is none.
func (s *Store) get(ctx context.Context, key string) (e entry, ok bool, err error) {
	err = s.db.GetContext(ctx, &e,
		"SELECT key, resource, payload, fetched_at, stale FROM entries WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, fmt.Errorf("loading entry %s: %w", key, err)
	}
	return e, true, nil
}

// markStale flags every entry of the given resources as stale and returns
// how many rows changed.
func (s *Store) markStale(ctx context.Context, resources ...string) (int64, error) {
	if len(resources) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("UPDATE entries SET stale = 1 WHERE resource IN (?)", resources)
	if err != nil {
		return 0, fmt.Errorf("building invalidate query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("invalidating %s: %w", strings.Join(resources, ","), err)
	}
	return res.RowsAffected()
}

// keys lists the cached keys of a resource.
func (s *Store) keys(ctx context.Context, resource string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		"SELECT key FROM entries WHERE resource = ? ORDER BY key", resource)
	if err != nil {
		return nil, fmt.Errorf("listing keys of %s: %w", resource, err)
	}
	return keys, nil
}

// clear removes every entry.
func (s *Store) clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	return nil
}
