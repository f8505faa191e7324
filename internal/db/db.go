package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/snipvault/internal/config"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding the client's durable local state
type DB struct {
	*sql.DB
}

// DefaultDBPath returns the default database path (~/.snipvault/state.db)
func DefaultDBPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// Open opens or creates the SQLite database. ":memory:" gives a private
// in-memory database, used by tests.
func Open(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every pooled connection to ":memory:" would see its own empty database
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}

	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenDefault opens the database at the default path
func OpenDefault() (*DB, error) {
	path, err := DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// GetItem reads a value from the origin-scoped key-value table. A missing
// key is reported with ok=false and no error.
func (db *DB) GetItem(ctx context.Context, origin, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE origin = ? AND key = ?`,
		origin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem inserts or replaces a value
func (db *DB) SetItem(ctx context.Context, origin, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO local_storage (origin, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (origin, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		origin, key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a value; removing a missing key is not an error
func (db *DB) RemoveItem(ctx context.Context, origin, key string) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE origin = ? AND key = ?`,
		origin, key,
	); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Origins lists every origin with stored state, sorted
func (db *DB) Origins(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT origin FROM local_storage ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("failed to list origins: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var origins []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		origins = append(origins, o)
	}
	return origins, rows.Err()
}
