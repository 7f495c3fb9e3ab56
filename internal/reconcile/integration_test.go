package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetledger/fleetledger/internal/extract"
	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/testutil"
)

// Runs the pipeline end to end against a real migrated database instead of
// the mock store.
func TestEngineRunAgainstDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	path := writeTestCSV(t,
		"2024-03-01,TRK-101,,Fuel,45.50,Fill-up\n"+
			"2024-03-02,VAN-201,South Depot,Fuel,80.00,Fill-up\n"+
			"2024-03-03,BUS-999,,,12.00,Unknown unit\n")

	engine := New(db.Storage, extract.DefaultRegistry(), AutoApprove{}, nil)
	result, err := engine.Run(ctx, []string{path}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Extracted)
	assert.True(t, result.Committed)
	assert.Equal(t, service.ImportSummary{Imported: 2, Failed: 0}, result.Summary)

	expenses, err := db.Storage.ListExpenses(ctx, service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)

	snapshot := db.Snapshot(ctx)
	fuelID := db.CategoryID(ctx, "Fuel")
	for _, expense := range expenses {
		require.NotNil(t, expense.BranchID)
		require.NotNil(t, expense.CategoryID)
		assert.Equal(t, fuelID, *expense.CategoryID)
		assert.NotNil(t, snapshot.VehicleByID(expense.VehicleID))
	}

	// TRK-101 had no branch text; its expense carries the home branch.
	var trk *model.Vehicle
	for i := range snapshot.Vehicles {
		if snapshot.Vehicles[i].Plate == "TRK-101" {
			trk = &snapshot.Vehicles[i]
		}
	}
	require.NotNil(t, trk)
	filtered, err := db.Storage.ListExpenses(ctx, service.ExpenseFilter{VehicleID: &trk.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, trk.BranchID, *filtered[0].BranchID)
}

func TestEngineDryRunAgainstDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	path := writeTestCSV(t, "2024-03-01,TRK-101,,Fuel,45.50,Fill-up\n")

	engine := New(db.Storage, extract.DefaultRegistry(), AutoApprove{}, nil)
	result, err := engine.Run(ctx, []string{path}, Options{DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.Committed)

	expenses, err := db.Storage.ListExpenses(ctx, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, expenses)
}
