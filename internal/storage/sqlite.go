// Package storage provides the data persistence layer for the fleet application.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fleetledger/fleetledger/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Snapshot loads the reference data an import session matches against.
// The returned value is a point-in-time copy; concurrent registry edits are
// not reflected.
func (s *SQLiteStorage) Snapshot(ctx context.Context) (*model.ReferenceSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	branches, err := s.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return &model.ReferenceSnapshot{
		Vehicles:   vehicles,
		Branches:   branches,
		Categories: categories,
	}, nil
}
