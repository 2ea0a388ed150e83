package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations[i] upgrades a database at user_version i to i+1. Each step
// must tolerate a table that schema.sql already created in its final shape.
var migrations = []func(*sql.DB) error{
	addUpdatedAt,
}

// SQLiteBackend keeps every key in one WAL-mode table, so a CLI reading
// state never blocks on another process writing it.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and brings its schema
// up to date. Opening an existing database again is safe.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	steps := []struct {
		name string
		run  func(*sql.DB) error
	}{
		{"connect", func(db *sql.DB) error { return db.Ping() }},
		{"configure", applyPragmas},
		{"create schema", func(db *sql.DB) error { _, err := db.Exec(schemaSQL); return err }},
		{"migrate", migrate},
	}
	for _, step := range steps {
		if err := step.run(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %s: %w", path, step.name, err)
		}
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get: %w", err)
	}
	return value, nil
}

func (s *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// migrate runs the migrations past the stored user_version and records
// the new version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if err := migrations[v](db); err != nil {
			return fmt.Errorf("to version %d: %w", v+1, err)
		}
	}
	if version >= len(migrations) {
		return nil
	}
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations)))
	return err
}

func addUpdatedAt(db *sql.DB) error {
	has, err := hasColumn(db, "kv", "updated_at")
	if err != nil || has {
		return err
	}
	_, err = db.Exec(`ALTER TABLE kv ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`)
	return err
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
