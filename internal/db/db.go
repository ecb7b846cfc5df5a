// Package db provides database connection management for the PawTrail core.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with PawTrail-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the local SQLite database with:
// - WAL mode for concurrent reads during sync
// - Foreign key constraints enabled
// - A single writer connection (SQLite does not support multiple writers)
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pawtrail.db")

	// modernc.org/sqlite is pure Go, no CGO
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := applySchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
