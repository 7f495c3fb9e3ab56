// Package testutil provides shared fixtures for tests that need a seeded
// database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/storage"
)

// TestDB wraps a migrated temporary database with the reference rows most
// tests need.
type TestDB struct {
	Storage  service.Storage
	Branches []model.Branch
	Vehicles []model.Vehicle
	t        *testing.T
}

// SetupTestDB creates a migrated database in a temp directory and seeds two
// branches and three vehicles. Cleanup is registered on the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fleet-test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Errorf("failed to close test database: %v", closeErr)
		}
	})

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	db.seed(ctx)
	return db
}

func (db *TestDB) seed(ctx context.Context) {
	db.t.Helper()

	branches := []model.Branch{
		{Name: "North Depot", Location: "Springfield"},
		{Name: "South Depot", Location: "Shelbyville"},
	}
	for i := range branches {
		if err := db.Storage.CreateBranch(ctx, &branches[i]); err != nil {
			db.t.Fatalf("failed to seed branch %q: %v", branches[i].Name, err)
		}
	}
	db.Branches = branches

	vehicles := []model.Vehicle{
		{Plate: "TRK-101", VIN: "1FTFW1ET5DFC10312", Make: "Ford", Model: "F-150", BranchID: branches[0].ID},
		{Plate: "TRK-102", VIN: "1GCHK23U34F215866", Make: "Chevrolet", Model: "Silverado", BranchID: branches[0].ID},
		{Plate: "VAN-201", VIN: "WD3PE7CC5E5123456", Make: "Mercedes", Model: "Sprinter", BranchID: branches[1].ID},
	}
	for i := range vehicles {
		if err := db.Storage.CreateVehicle(ctx, &vehicles[i]); err != nil {
			db.t.Fatalf("failed to seed vehicle %q: %v", vehicles[i].Plate, err)
		}
	}
	db.Vehicles = vehicles
}

// Snapshot loads the current reference snapshot, failing the test on error.
func (db *TestDB) Snapshot(ctx context.Context) *model.ReferenceSnapshot {
	db.t.Helper()

	snapshot, err := db.Storage.Snapshot(ctx)
	if err != nil {
		db.t.Fatalf("failed to load snapshot: %v", err)
	}
	return snapshot
}

// CategoryID returns the id of the seeded category with the given name.
func (db *TestDB) CategoryID(ctx context.Context, name string) int64 {
	db.t.Helper()

	categories, err := db.Storage.ListCategories(ctx)
	if err != nil {
		db.t.Fatalf("failed to list categories: %v", err)
	}
	for _, c := range categories {
		if c.Name == name {
			return c.ID
		}
	}
	db.t.Fatalf("category %q not seeded", name)
	return 0
}
