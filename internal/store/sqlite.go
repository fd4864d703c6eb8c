package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);`

const upsertSQL = `
INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, datetime('now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SQLiteStore persists values in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path. The path ":memory:" gives
// a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" is a distinct database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, upsertSQL, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Update runs in a BEGIN IMMEDIATE transaction, which takes the database
// write lock before the read.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) (next string, err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `BEGIN IMMEDIATE`); err != nil {
		return "", fmt.Errorf("beginning update of %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(context.WithoutCancel(ctx), `ROLLBACK`)
		}
	}()

	var current string
	found := true
	switch err := conn.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&current); {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	next, err = fn(current, found)
	if err != nil {
		return "", err
	}
	if _, err = conn.ExecContext(ctx, upsertSQL, key, next); err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	if _, err = conn.ExecContext(ctx, `COMMIT`); err != nil {
		return "", fmt.Errorf("committing %s: %w", key, err)
	}
	return next, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
