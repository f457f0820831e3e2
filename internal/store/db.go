// Package store provides the SQLite-backed key-value store rupee persists its collections in.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// KV is a durable key-value slot store.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Update(key string, fn func(old []byte, ok bool) ([]byte, error)) error
}

// ErrNoChange may be returned by an Update callback to leave the stored value as it is.
var ErrNoChange = errors.New("no change")

const upsertSQL = `INSERT INTO collections (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// DB is a SQLite-backed KV. One row per collection key.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns the stored value for key. ok is false when the key was never written.
func (d *DB) Get(key string) ([]byte, bool, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put replaces the value stored under key.
func (d *DB) Put(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := d.db.Exec(upsertSQL, key, string(value), now); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Update reads key, passes the value to fn and stores what fn returns, all in one
// BEGIN IMMEDIATE transaction. Writers on other handles or in other processes wait
// on the write lock (up to the busy timeout) instead of overwriting each other.
// ok is false when key was never written. An error from fn rolls back; ErrNoChange
// rolls back and is not reported.
func (d *DB) Update(key string, fn func(old []byte, ok bool) ([]byte, error)) error {
	ctx := context.Background()
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// sql.Tx begins DEFERRED; the write lock must be held before the read.
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("locking %s: %w", key, err)
	}
	done := false
	defer func() {
		if !done {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	var value string
	ok := true
	err = conn.QueryRowContext(ctx, "SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		ok = false
	case err != nil:
		return fmt.Errorf("reading %s: %w", key, err)
	}

	var old []byte
	if ok {
		old = []byte(value)
	}
	next, err := fn(old, ok)
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := conn.ExecContext(ctx, upsertSQL, key, string(next), now); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("committing %s: %w", key, err)
	}
	done = true
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (d *DB) Delete(key string) error {
	_, err := d.db.Exec("DELETE FROM collections WHERE key = ?", key)
	return err
}

// KeyInfo describes one stored collection.
type KeyInfo struct {
	Key       string
	Bytes     int
	UpdatedAt time.Time
}

// Keys lists every stored collection, sorted by key.
func (d *DB) Keys() ([]KeyInfo, error) {
	rows, err := d.db.Query("SELECT key, length(value), updated_at FROM collections ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []KeyInfo
	for rows.Next() {
		var ki KeyInfo
		var updated string
		if err := rows.Scan(&ki.Key, &ki.Bytes, &updated); err != nil {
			return nil, err
		}
		ki.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		result = append(result, ki)
	}
	return result, rows.Err()
}
