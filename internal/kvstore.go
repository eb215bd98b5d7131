package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Storage scopes. ScopeSync holds the small user-level settings blob,
// ScopeLocal holds the chat history log.
const (
	ScopeSync  = "sync"
	ScopeLocal = "local"
)

// KVStore is the asynchronous key-value persistence boundary. Get
// reports found=false for missing keys; all failures are wrapped in
// StorageError and are treated by callers as soft failures.
type KVStore interface {
	Get(ctx context.Context, scope, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, scope, key string, value []byte) error
	Delete(ctx context.Context, scope, key string) error
	Close() error
}

// SQLiteKV implements KVStore on a single SQLite file.
type SQLiteKV struct {
	db *sql.DB
}

// OpenKV opens (creating if needed) the store at path.
func OpenKV(path string) (*SQLiteKV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	// WAL keeps readers out of the writers' way.
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store ping failed: %w", err)
	}

	kv := &SQLiteKV{db: db}
	if err := kv.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return kv, nil
}

func (s *SQLiteKV) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS assistant_kv (
		scope      TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (scope, key)
	);`
	_, err := s.db.Exec(query)
	return err
}

// Get implements KVStore.
func (s *SQLiteKV) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	var value []byte
	row := s.db.QueryRowContext(ctx,
		"SELECT value FROM assistant_kv WHERE scope = ? AND key = ?", scope, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, &StorageError{Scope: scope, Key: key, Op: "get", Err: err}
	}
	return value, true, nil
}

// Set implements KVStore.
func (s *SQLiteKV) Set(ctx context.Context, scope, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assistant_kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		scope, key, value, time.Now().UnixMilli())
	if err != nil {
		return &StorageError{Scope: scope, Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements KVStore.
func (s *SQLiteKV) Delete(ctx context.Context, scope, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM assistant_kv WHERE scope = ? AND key = ?", scope, key)
	if err != nil {
		return &StorageError{Scope: scope, Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
