// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// DATABASE/SQL OVERVIEW:
// Go's standard library provides "database/sql" — a generic interface for SQL databases.
// It works with any database through "drivers" (SQLite, Postgres, MySQL, etc.).
// Key types:
//   - sql.DB      — a connection pool (NOT a single connection!)
//   - sql.Tx      — a transaction
//   - sql.Row     — a single result row
//   - sql.Rows    — multiple result rows (must be closed!)
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// It doesn't give us any symbols to use directly. Instead, the sqlite package's
	// init() function registers itself with database/sql as a driver named "sqlite".
	// After this import, sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
//
// It implements repository.RestaurantRepository (see restaurant.go) and
// exposes repository.UserRepository through Users() (see user.go), and it
// controls the connection lifecycle: New creates it, Close destroys it.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/directory.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (great for tests, lost on close)
//
// sql.Open() does NOT actually open a connection — it just creates a pool
// manager. We call Ping() to force an immediate connection, so a bad path or
// permissions problem fails at startup rather than on the first request.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ":memory:" GOTCHA:
	// sql.DB is a POOL. Each pooled connection to ":memory:" gets its OWN
	// empty database — so a second connection would see none of your tables.
	// Capping the pool at one connection makes the in-memory DB behave like
	// a single shared database, which is what tests expect.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes.
	// WAL mode allows concurrent reads WHILE a write is happening.
	// This is critical for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
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

// Close closes the database connection pool.
//
// Wherever you call New(), immediately defer Close() — this flushes the WAL
// and releases the file lock even if something panics later.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every startup.
// For a schema this small, embedded SQL beats dragging in a migration tool;
// revisit if the schema starts changing shape between releases.
func (db *DB) migrate() error {
	// Credential store. username carries a UNIQUE constraint — uniqueness is
	// enforced here, not just in application code.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Restaurant directory. The address is flattened into columns; the
	// grades history is a JSON array in a TEXT column — it is only ever
	// read and written whole, and JSON keeps its insertion order.
	//
	// restaurant_id is the EXTERNAL business identifier: indexed because
	// every paginated listing sorts by it, but NOT unique (the source
	// dataset does not guarantee it).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS restaurants (
			id            TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			name          TEXT NOT NULL,
			borough       TEXT NOT NULL DEFAULT '',
			cuisine       TEXT NOT NULL DEFAULT '',
			building      TEXT NOT NULL DEFAULT '',
			street        TEXT NOT NULL DEFAULT '',
			zipcode       TEXT NOT NULL DEFAULT '',
			longitude     REAL NOT NULL DEFAULT 0,
			latitude      REAL NOT NULL DEFAULT 0,
			grades        TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_restaurants_restaurant_id ON restaurants(restaurant_id);
		CREATE INDEX IF NOT EXISTS idx_restaurants_borough ON restaurants(borough);
		CREATE INDEX IF NOT EXISTS idx_restaurants_cuisine ON restaurants(cuisine);
	`)
	if err != nil {
		return fmt.Errorf("creating restaurants table: %w", err)
	}

	return nil
}
