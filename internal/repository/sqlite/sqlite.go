// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure-Go translation of the SQLite C sources — no CGo, no C
// compiler, cross-compiles anywhere Go does. The database is a single file
// next to the binary, which matches this product's deployment (one small
// server, low volume).
//
// ACCESS POLICY:
// Every repository method runs inside one exclusive critical section: a
// single mutex guards the connection, and the pool is pinned to one open
// connection. Reads and writes are fully serialized. This trades throughput
// for simplicity, which is acceptable at this workload — and it is the
// documented resource model of the service, not an accident of the driver.
// No operation retries; failures surface to the caller immediately.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and the mutex that serializes access to it.
type DB struct {
	mu   sync.Mutex
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: the access policy serializes everything anyway, and
	// a single connection keeps ":memory:" databases coherent in tests
	// (each pooled connection would otherwise get its own empty memory DB).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps the file consistent across crashes; foreign keys are off by
	// default in SQLite and comments need the posts FK enforced.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection, flushing the WAL and releasing the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB { return &UserDB{db: db} }

// Posts returns the post repository backed by this database.
func (db *DB) Posts() *PostDB { return &PostDB{db: db} }

// Comments returns the comment repository backed by this database.
func (db *DB) Comments() *CommentDB { return &CommentDB{db: db} }

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent
// across restarts; addColumnIfNotExists covers columns added after the first
// production deployment.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			nickname      TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			text       TEXT NOT NULL,
			author     TEXT NOT NULL DEFAULT '',
			target     TEXT NOT NULL DEFAULT '',
			tag        TEXT NOT NULL DEFAULT '',
			bg         TEXT NOT NULL DEFAULT '',
			scope      TEXT NOT NULL DEFAULT 'public',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL REFERENCES posts(id),
			"user"     TEXT NOT NULL DEFAULT '',
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// The first deployed revision had no created_at on users.
	if err := db.addColumnIfNotExists("users", "created_at", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding created_at to users: %w", err)
	}

	return nil
}

// addColumnIfNotExists makes ALTER TABLE migrations idempotent — ALTER TABLE
// errors if the column already exists, so check pragma_table_info first.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// Timestamps are stored as RFC 3339 UTC strings, like the revisions before
// this one. The layout keeps a fixed-width fraction — time.RFC3339Nano trims
// trailing zeros, which would break the lexical-equals-chronological
// ordering the list queries rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Legacy rows may carry trimmed fractions; RFC3339Nano parses both.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
