package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetledger/fleetledger/internal/model"
)

func testSnapshot() *model.ReferenceSnapshot {
	return &model.ReferenceSnapshot{
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
	}
}

func testRecords() []model.CandidateRecord {
	return []model.CandidateRecord{
		{VehicleText: "TRK-101", CategoryText: "Fuel", Amount: 40, SourceFile: "a.csv", LineNumber: 2},
		{VehicleText: "BUS-999", Amount: 60, SourceFile: "a.csv", LineNumber: 3},
		{VehicleText: "TRK-102", Amount: 25.5, SourceFile: "a.csv", LineNumber: 4},
	}
}

func TestNewSessionMatchesRecords(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	require.Equal(t, 3, session.Len())
	assert.Equal(t, 2, session.MatchedCount())
	assert.Equal(t, 1, session.UnmatchedCount())
	assert.InDelta(t, 125.5, session.TotalAmount(), 0.001)
	assert.True(t, session.CanCommit())

	// Unmatched entry keeps its record data for manual fixup.
	entries := session.Entries()
	assert.Nil(t, entries[1].Vehicle)
	assert.Equal(t, "BUS-999", entries[1].Record.VehicleText)
}

func TestSessionSetVehicleDerivesBranch(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	// Entry 1 is unmatched with no branch; assigning a vehicle pulls in its
	// home branch.
	require.NoError(t, session.SetVehicle(1, 2))

	entry := session.Entries()[1]
	require.NotNil(t, entry.Vehicle)
	assert.Equal(t, int64(2), entry.Vehicle.ID)
	require.NotNil(t, entry.Branch)
	assert.Equal(t, int64(20), entry.Branch.ID)

	assert.Equal(t, 3, session.MatchedCount())
	assert.Equal(t, 0, session.UnmatchedCount())
}

func TestSessionSetVehicleKeepsExplicitBranch(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	require.NoError(t, session.SetBranch(1, 10))
	require.NoError(t, session.SetVehicle(1, 2)) // home branch is 20

	entry := session.Entries()[1]
	assert.Equal(t, int64(10), entry.Branch.ID, "explicit branch must survive vehicle assignment")
}

func TestSessionClearSemantics(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	require.NoError(t, session.SetVehicle(0, 0))
	require.NoError(t, session.SetBranch(0, 0))
	require.NoError(t, session.SetCategory(0, 0))
	require.NoError(t, session.SetOdometer(0, nil))

	entry := session.Entries()[0]
	assert.Nil(t, entry.Vehicle)
	assert.Nil(t, entry.Branch)
	assert.Nil(t, entry.Category)
	assert.Nil(t, entry.Odometer)
}

func TestSessionRejectsUnknownIDs(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	assert.Error(t, session.SetVehicle(0, 99))
	assert.Error(t, session.SetBranch(0, 99))
	assert.Error(t, session.SetCategory(0, 99))
}

func TestSessionIndexBounds(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	assert.Error(t, session.SetAmount(-1, 10))
	assert.Error(t, session.SetAmount(3, 10))
	assert.Error(t, session.Remove(3))
	assert.Error(t, session.SetDate(99, time.Now()))
}

func TestSessionScalarEdits(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	newDate := time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, session.SetDate(0, newDate))
	require.NoError(t, session.SetAmount(0, 99.99))
	require.NoError(t, session.SetDescription(0, "edited"))
	odo := int64(12345)
	require.NoError(t, session.SetOdometer(0, &odo))

	entry := session.Entries()[0]
	assert.True(t, entry.Date.Equal(newDate))
	assert.Equal(t, 99.99, entry.Amount)
	assert.Equal(t, "edited", entry.Description)
	require.NotNil(t, entry.Odometer)
	assert.Equal(t, int64(12345), *entry.Odometer)

	// The immutable record is untouched by edits.
	assert.Equal(t, 40.0, entry.Record.Amount)
}

func TestSessionAmountEditMovesTotalByDelta(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())
	before := session.TotalAmount()

	require.NoError(t, session.SetAmount(0, 150.00)) // was 40
	assert.InDelta(t, before+110.00, session.TotalAmount(), 0.001)

	require.NoError(t, session.SetAmount(0, 100.00))
	assert.InDelta(t, before+60.00, session.TotalAmount(), 0.001)
}

func TestSessionRejectsNegativeValues(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	assert.Error(t, session.SetAmount(0, -1))
	odo := int64(-10)
	assert.Error(t, session.SetOdometer(0, &odo))
}

func TestSessionRemoveShiftsIndexes(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())

	require.NoError(t, session.Remove(0))
	require.Equal(t, 2, session.Len())

	// Former entry 1 (the unmatched one) is now entry 0.
	assert.Equal(t, "BUS-999", session.Entries()[0].Record.VehicleText)
	assert.InDelta(t, 85.5, session.TotalAmount(), 0.001)
}

func TestSessionRemoveAdjustsMatchedCount(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())
	require.Equal(t, 2, session.MatchedCount())

	// Removing the unmatched entry leaves the matched count alone.
	require.NoError(t, session.Remove(1))
	assert.Equal(t, 2, session.MatchedCount())
	assert.Equal(t, 0, session.UnmatchedCount())

	// Removing a matched entry drops it by exactly one.
	require.NoError(t, session.Remove(0))
	assert.Equal(t, 1, session.MatchedCount())
}

func TestSessionCanCommitRequiresMatchedEntry(t *testing.T) {
	records := []model.CandidateRecord{{VehicleText: "BUS-999", Amount: 10}}
	session := NewSession(records, testSnapshot())

	assert.False(t, session.CanCommit())

	require.NoError(t, session.SetVehicle(0, 1))
	assert.True(t, session.CanCommit())
}

func TestSessionReset(t *testing.T) {
	session := NewSession(testRecords(), testSnapshot())
	session.Reset()

	assert.Equal(t, 0, session.Len())
	assert.False(t, session.CanCommit())
}
