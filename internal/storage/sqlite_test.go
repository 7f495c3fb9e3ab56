package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func mustCreateBranch(t *testing.T, store *SQLiteStorage, name string) *model.Branch {
	t.Helper()
	branch := &model.Branch{Name: name, Location: "Testville"}
	if err := store.CreateBranch(context.Background(), branch); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}
	return branch
}

func mustCreateVehicle(t *testing.T, store *SQLiteStorage, plate, vin string, branchID int64) *model.Vehicle {
	t.Helper()
	vehicle := &model.Vehicle{Plate: plate, VIN: vin, Make: "Ford", Model: "F-150", BranchID: branchID}
	if err := store.CreateVehicle(context.Background(), vehicle); err != nil {
		t.Fatalf("Failed to create vehicle: %v", err)
	}
	return vehicle
}

func TestVehicleCRUD(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	branch := mustCreateBranch(t, store, "North Depot")
	vehicle := mustCreateVehicle(t, store, "TRK-101", "1FTFW1ET5DFC10312", branch.ID)

	if vehicle.ID == 0 {
		t.Fatal("CreateVehicle did not set ID")
	}

	got, err := store.GetVehicleByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetVehicleByID: %v", err)
	}
	if got.Plate != "TRK-101" || got.VIN != "1FTFW1ET5DFC10312" || got.BranchID != branch.ID {
		t.Errorf("got %+v", got)
	}

	vehicles, err := store.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(vehicles) != 1 {
		t.Errorf("ListVehicles returned %d rows", len(vehicles))
	}
}

func TestVehicleWithoutHomeBranch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	vehicle := mustCreateVehicle(t, store, "TRK-999", "", 0)

	got, err := store.GetVehicleByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetVehicleByID: %v", err)
	}
	if got.BranchID != 0 {
		t.Errorf("BranchID = %d, want 0 for a branchless vehicle", got.BranchID)
	}

	negative := &model.Vehicle{Plate: "TRK-998", BranchID: -1}
	if err := store.CreateVehicle(ctx, negative); err == nil {
		t.Error("expected error for negative branch id")
	}
}

func TestVehicleNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetVehicleByID(context.Background(), 12345)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicatePlateRejected(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mustCreateVehicle(t, store, "TRK-101", "", 0)

	dup := &model.Vehicle{Plate: "TRK-101"}
	err := store.CreateVehicle(ctx, dup)
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestDuplicateVINRejectedButEmptyVINAllowed(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mustCreateVehicle(t, store, "TRK-101", "1FTFW1ET5DFC10312", 0)

	dup := &model.Vehicle{Plate: "TRK-102", VIN: "1FTFW1ET5DFC10312"}
	if err := store.CreateVehicle(ctx, dup); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry for duplicate VIN, got %v", err)
	}

	// The VIN uniqueness index is partial: any number of vehicles may have
	// no VIN on record.
	mustCreateVehicle(t, store, "TRK-103", "", 0)
	mustCreateVehicle(t, store, "TRK-104", "", 0)
}

func TestSnapshotLoadsAllReferenceData(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	branch := mustCreateBranch(t, store, "North Depot")
	mustCreateVehicle(t, store, "TRK-101", "", branch.ID)

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Vehicles) != 1 {
		t.Errorf("snapshot has %d vehicles", len(snapshot.Vehicles))
	}
	if len(snapshot.Branches) != 1 {
		t.Errorf("snapshot has %d branches", len(snapshot.Branches))
	}
	// Migration v3 seeds the default categories.
	if len(snapshot.Categories) == 0 {
		t.Error("snapshot has no categories; seed migration missing")
	}
	if snapshot.BranchByID(branch.ID) == nil {
		t.Error("BranchByID lookup failed")
	}
}

func TestCreateExpenseAndList(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	branch := mustCreateBranch(t, store, "North Depot")
	vehicle := mustCreateVehicle(t, store, "TRK-101", "", branch.ID)

	odo := int64(52000)
	expense := &model.Expense{
		VehicleID:   vehicle.ID,
		BranchID:    &branch.ID,
		Date:        time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      45.50,
		Description: "Diesel",
		Odometer:    &odo,
		Source:      "fuel.csv",
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if expense.ID == 0 {
		t.Fatal("CreateExpense did not set ID")
	}

	expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("ListExpenses returned %d rows", len(expenses))
	}

	got := expenses[0]
	if got.Amount != 45.50 || got.Description != "Diesel" || got.Source != "fuel.csv" {
		t.Errorf("got %+v", got)
	}
	if got.Odometer == nil || *got.Odometer != 52000 {
		t.Errorf("Odometer = %v", got.Odometer)
	}
	if got.BranchID == nil || *got.BranchID != branch.ID {
		t.Errorf("BranchID = %v", got.BranchID)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		expense *model.Expense
		name    string
	}{
		{name: "nil expense", expense: nil},
		{name: "missing vehicle", expense: &model.Expense{Date: time.Now(), Amount: 1}},
		{name: "negative amount", expense: &model.Expense{VehicleID: 1, Date: time.Now(), Amount: -1}},
		{name: "zero date", expense: &model.Expense{VehicleID: 1, Amount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.CreateExpense(ctx, tt.expense); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestListExpensesFilters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	branchA := mustCreateBranch(t, store, "North Depot")
	branchB := mustCreateBranch(t, store, "South Depot")
	v1 := mustCreateVehicle(t, store, "TRK-101", "", branchA.ID)
	v2 := mustCreateVehicle(t, store, "TRK-102", "", branchB.ID)

	base := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	seed := []struct {
		vehicleID int64
		branchID  *int64
		day       int
		amount    float64
	}{
		{v1.ID, &branchA.ID, 0, 10},
		{v1.ID, &branchA.ID, 10, 20},
		{v2.ID, &branchB.ID, 20, 30},
	}
	for _, s := range seed {
		date := base.AddDate(0, 0, s.day)
		err := store.CreateExpense(ctx, &model.Expense{
			VehicleID: s.vehicleID, BranchID: s.branchID,
			Date: date, Amount: s.amount, Description: "x", Source: "t.csv",
		})
		if err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}

	byVehicle, err := store.ListExpenses(ctx, service.ExpenseFilter{VehicleID: &v1.ID})
	if err != nil {
		t.Fatalf("filter by vehicle: %v", err)
	}
	if len(byVehicle) != 2 {
		t.Errorf("vehicle filter returned %d rows", len(byVehicle))
	}

	start := base.AddDate(0, 0, 5)
	byDate, err := store.ListExpenses(ctx, service.ExpenseFilter{StartDate: &start})
	if err != nil {
		t.Fatalf("filter by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("date filter returned %d rows", len(byDate))
	}

	byBranch, err := store.ListExpenses(ctx, service.ExpenseFilter{BranchID: &branchB.ID})
	if err != nil {
		t.Fatalf("filter by branch: %v", err)
	}
	if len(byBranch) != 1 || byBranch[0].Amount != 30 {
		t.Errorf("branch filter returned %+v", byBranch)
	}

	limited, err := store.ListExpenses(ctx, service.ExpenseFilter{Limit: 1})
	if err != nil {
		t.Fatalf("limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d rows", len(limited))
	}
}

func TestCategorySummary(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	vehicle := mustCreateVehicle(t, store, "TRK-101", "", 0)

	categories, err := store.ListCategories(ctx)
	if err != nil || len(categories) == 0 {
		t.Fatalf("seeded categories missing: %v", err)
	}
	fuelID := categories[0].ID

	date := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, amount := range []float64{10, 20} {
		err := store.CreateExpense(ctx, &model.Expense{
			VehicleID: vehicle.ID, CategoryID: &fuelID,
			Date: date, Amount: amount, Description: "x", Source: "t.csv",
		})
		if err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}
	// One uncategorized expense.
	err = store.CreateExpense(ctx, &model.Expense{
		VehicleID: vehicle.ID, Date: date, Amount: 5, Description: "y", Source: "t.csv",
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	summary, err := store.GetCategorySummary(ctx, date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetCategorySummary: %v", err)
	}

	if summary[categories[0].Name] != 30 {
		t.Errorf("category total = %v, want 30", summary[categories[0].Name])
	}
	if summary["Uncategorized"] != 5 {
		t.Errorf("uncategorized total = %v, want 5", summary["Uncategorized"])
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestValidationHelpers(t *testing.T) {
	store := createTestStorage(t)

	if err := store.CreateVehicle(context.Background(), nil); err == nil {
		t.Error("nil vehicle accepted")
	}
	if err := store.CreateVehicle(context.Background(), &model.Vehicle{}); err == nil {
		t.Error("vehicle without plate accepted")
	}
	if err := store.CreateBranch(context.Background(), &model.Branch{}); err == nil {
		t.Error("branch without name accepted")
	}
}
