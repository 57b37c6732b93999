// Package storage persists faculty profiles and publications in SQLite and
// exchanges them as JSONL snapshots.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors returned by DB methods.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// DB wraps a SQLite database connection.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenDB opens or creates a SQLite database at the given path.
// Use ":memory:" for a throwaway store.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes; an in-memory database is also
	// private to its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the connection is usable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS faculty (
			id TEXT PRIMARY KEY,
			faculty_id TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			profile_photo TEXT NOT NULL DEFAULT 'default-avatar.png',
			is_profile_complete INTEGER NOT NULL DEFAULT 0,
			public_profile_token TEXT UNIQUE,
			google_scholar_link TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		-- One profile per email; blank emails belong to unfinished profiles.
		CREATE UNIQUE INDEX IF NOT EXISTS idx_faculty_email_unique
			ON faculty(lower(email)) WHERE email != '';

		CREATE TABLE IF NOT EXISTS publications (
			id TEXT PRIMARY KEY,
			faculty_email TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL DEFAULT '[]',
			journal TEXT NOT NULL DEFAULT '',
			pub_year INTEGER,
			citations INTEGER NOT NULL DEFAULT 0 CHECK (citations >= 0),
			url TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_email ON publications(faculty_email);

		-- Full-text search over titles, abstracts, authors and venues
		-- (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			id UNINDEXED,
			title,
			abstract,
			authors_text,
			journal
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return migrateFTS(db)
}

// migrateFTS recreates an index built before the journal column existed and
// repopulates it from the publications table.
func migrateFTS(db *sql.DB) error {
	if _, err := db.Exec(`SELECT journal FROM publications_fts LIMIT 0`); err == nil {
		return nil
	}
	stmts := []string{
		`DROP TABLE publications_fts`,
		`CREATE VIRTUAL TABLE publications_fts USING fts5(
			id UNINDEXED,
			title,
			abstract,
			authors_text,
			journal
		)`,
		`INSERT INTO publications_fts (id, title, abstract, authors_text, journal)
			SELECT id, title, abstract, authors_json, journal FROM publications`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrating publications_fts: %w", err)
		}
	}
	return nil
}

// WithClock overrides the timestamp source (for tests).
func (d *DB) WithClock(now func() time.Time) *DB {
	d.now = now
	return d
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,'") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
