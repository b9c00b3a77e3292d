// Package sqlitestore keeps the local profile in a single SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/99minutos/library-catalog/internal/core/ports"
)

// Store is a ports.KeyValueStore backed by a kv table.
type Store struct {
	db *sql.DB

	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	deleteStmt *sql.Stmt
}

// Open opens (or creates) the database at path, applies schema migrations and
// prepares statements.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps the WAL pragma and write ordering on a single handle.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.prepareStatements(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases prepared statements and closes the database.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.deleteStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	migrations := []struct {
		stmt string
		args []any
	}{
		{stmt: `CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value BLOB NOT NULL,
            updated_at DATETIME NOT NULL
        );`},
		{stmt: `INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, args: []any{schemaVersion}},
	}
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, m.stmt, m.args...); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) prepareStatements(ctx context.Context) error {
	var err error
	if s.getStmt, err = s.db.PrepareContext(ctx, `SELECT value FROM kv WHERE key = ?`); err != nil {
		return fmt.Errorf("prepare get: %w", err)
	}
	if s.setStmt, err = s.db.PrepareContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`); err != nil {
		return fmt.Errorf("prepare set: %w", err)
	}
	if s.deleteStmt, err = s.db.PrepareContext(ctx, `DELETE FROM kv WHERE key = ?`); err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ports.KeyValueStore
// ---------------------------------------------------------------------------

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.setStmt.ExecContext(ctx, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
