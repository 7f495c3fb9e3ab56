package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/extract"
	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/preview"
	"github.com/fleetledger/fleetledger/internal/service"
)

// mockStorage implements service.Storage for engine tests. failOn makes
// CreateExpense fail for specific vehicle ids.
type mockStorage struct {
	snapshot *model.ReferenceSnapshot
	failOn   map[int64]bool
	expenses []model.Expense
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		snapshot: &model.ReferenceSnapshot{
			Vehicles: []model.Vehicle{
				{ID: 1, Plate: "TRK-101", BranchID: 10},
				{ID: 2, Plate: "TRK-102", BranchID: 20},
			},
			Branches: []model.Branch{
				{ID: 10, Name: "North Depot"},
				{ID: 20, Name: "South Depot"},
			},
			Categories: []model.Category{
				{ID: 100, Name: "Fuel", Type: model.CategoryTypeFuel},
			},
		},
		failOn: make(map[int64]bool),
	}
}

func (m *mockStorage) CreateVehicle(_ context.Context, _ *model.Vehicle) error  { return nil }
func (m *mockStorage) GetVehicleByID(_ context.Context, _ int64) (*model.Vehicle, error) {
	return nil, common.ErrNotFound
}
func (m *mockStorage) ListVehicles(_ context.Context) ([]model.Vehicle, error) {
	return m.snapshot.Vehicles, nil
}
func (m *mockStorage) CreateBranch(_ context.Context, _ *model.Branch) error { return nil }
func (m *mockStorage) GetBranchByID(_ context.Context, _ int64) (*model.Branch, error) {
	return nil, common.ErrNotFound
}
func (m *mockStorage) ListBranches(_ context.Context) ([]model.Branch, error) {
	return m.snapshot.Branches, nil
}
func (m *mockStorage) CreateCategory(_ context.Context, _ *model.Category) error { return nil }
func (m *mockStorage) ListCategories(_ context.Context) ([]model.Category, error) {
	return m.snapshot.Categories, nil
}
func (m *mockStorage) Snapshot(_ context.Context) (*model.ReferenceSnapshot, error) {
	return m.snapshot, nil
}
func (m *mockStorage) CreateExpense(_ context.Context, expense *model.Expense) error {
	if m.failOn[expense.VehicleID] {
		return fmt.Errorf("constraint violation for vehicle %d", expense.VehicleID)
	}
	m.expenses = append(m.expenses, *expense)
	return nil
}
func (m *mockStorage) ListExpenses(_ context.Context, _ service.ExpenseFilter) ([]model.Expense, error) {
	return m.expenses, nil
}
func (m *mockStorage) GetCategorySummary(_ context.Context, _, _ time.Time) (map[string]float64, error) {
	return nil, nil
}
func (m *mockStorage) GetBranchSummary(_ context.Context, _, _ time.Time) (map[string]float64, error) {
	return nil, nil
}
func (m *mockStorage) Migrate(_ context.Context) error { return nil }
func (m *mockStorage) Close() error                    { return nil }

// rejectReviewer abandons every session.
type rejectReviewer struct{}

func (rejectReviewer) Review(_ context.Context, _ *preview.Session) (bool, error) {
	return false, nil
}

func writeTestCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	content := "Date,Vehicle,Branch,Category,Amount,Description\n" + rows
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunImportsMatchedEntries(t *testing.T) {
	store := newMockStorage()
	path := writeTestCSV(t,
		"2023-05-01,TRK-101,,Fuel,40.00,Diesel\n"+
			"2023-05-02,BUS-999,,,60.00,Unknown vehicle\n"+
			"2023-05-03,TRK-102,North Depot,,25.50,Wash\n")

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	result, err := engine.Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	assert.True(t, result.Committed)
	assert.Equal(t, 3, result.Extracted)
	assert.Equal(t, 2, result.Summary.Imported)
	assert.Equal(t, 0, result.Summary.Failed)
	require.Len(t, store.expenses, 2)

	// Unmatched entries are excluded, not failed.
	for _, e := range store.expenses {
		assert.NotZero(t, e.VehicleID)
	}

	// Home-branch fallback flows through to the persisted row.
	first := store.expenses[0]
	require.NotNil(t, first.BranchID)
	assert.Equal(t, int64(10), *first.BranchID)
	require.NotNil(t, first.CategoryID)
	assert.Equal(t, int64(100), *first.CategoryID)

	// Explicit branch text wins for the second row.
	second := store.expenses[1]
	require.NotNil(t, second.BranchID)
	assert.Equal(t, int64(10), *second.BranchID)
}

func TestRunPartialFailureTally(t *testing.T) {
	store := newMockStorage()
	store.failOn[2] = true

	path := writeTestCSV(t,
		"2023-05-01,TRK-101,,,10.00,a\n"+
			"2023-05-02,TRK-102,,,20.00,b\n"+
			"2023-05-03,TRK-101,,,30.00,c\n")

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	result, err := engine.Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err, "a failed insert must not abort the run")

	assert.Equal(t, 2, result.Summary.Imported)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 3, result.Summary.Total())

	// The failed sibling did not prevent later inserts.
	require.Len(t, store.expenses, 2)
	assert.Equal(t, 30.00, store.expenses[1].Amount)
}

func TestRunProgressCoversEveryAttempt(t *testing.T) {
	store := newMockStorage()
	store.failOn[1] = true

	path := writeTestCSV(t,
		"2023-05-01,TRK-101,,,10.00,a\n"+
			"2023-05-02,TRK-102,,,20.00,b\n")

	var calls [][2]int
	progress := func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	engine := New(store, extract.DefaultRegistry(), nil, progress)
	_, err := engine.Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	// Progress fires after every attempt, successful or not.
	require.Len(t, calls, 2)
	assert.Equal(t, [2]int{1, 2}, calls[0])
	assert.Equal(t, [2]int{2, 2}, calls[1])
}

func TestRunNoRecords(t *testing.T) {
	store := newMockStorage()
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	result, err := engine.Run(context.Background(), []string{path}, Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoRecords))
	assert.NotEmpty(t, result.Warnings)
	assert.Empty(t, store.expenses)
}

func TestRunNothingMatched(t *testing.T) {
	store := newMockStorage()
	path := writeTestCSV(t, "2023-05-01,BUS-999,,,10.00,no such vehicle\n")

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	_, err := engine.Run(context.Background(), []string{path}, Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNothingMatched))
	assert.Empty(t, store.expenses)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	store := newMockStorage()
	path := writeTestCSV(t, "2023-05-01,TRK-101,,,10.00,a\n")

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	result, err := engine.Run(context.Background(), []string{path}, Options{DryRun: true})
	require.NoError(t, err)

	assert.False(t, result.Committed)
	assert.Equal(t, 1, result.Extracted)
	assert.Empty(t, store.expenses)
}

func TestRunAbandonedReview(t *testing.T) {
	store := newMockStorage()
	path := writeTestCSV(t, "2023-05-01,TRK-101,,,10.00,a\n")

	engine := New(store, extract.DefaultRegistry(), rejectReviewer{}, nil)
	result, err := engine.Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	assert.False(t, result.Committed)
	assert.Empty(t, store.expenses)
}

func TestRunStateReturnsToIdle(t *testing.T) {
	store := newMockStorage()
	path := writeTestCSV(t, "2023-05-01,TRK-101,,,10.00,a\n")

	engine := New(store, extract.DefaultRegistry(), nil, nil)
	require.Equal(t, StateIdle, engine.State())

	_, err := engine.Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, engine.State())

	// Failed runs also reset the state.
	_, err = engine.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.csv")}, Options{})
	require.Error(t, err)
	assert.Equal(t, StateIdle, engine.State())
}

func TestBuildExpenseDescriptionFallback(t *testing.T) {
	entry := model.PreviewEntry{
		Vehicle: &model.Vehicle{ID: 1},
		Amount:  10,
		Record:  model.CandidateRecord{SourceFile: "legacy.csv"},
	}

	expense := buildExpense(entry)
	assert.Equal(t, "Imported from legacy.csv", expense.Description)
	assert.Equal(t, "legacy.csv", expense.Source)
	assert.Nil(t, expense.BranchID)
	assert.Nil(t, expense.CategoryID)
}

func TestCommitPercentRounding(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 1, 100},
		{1, 200, 1},
	}
	for _, tt := range tests {
		if got := commitPercent(tt.done, tt.total); got != tt.want {
			t.Errorf("commitPercent(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}
