// Package preview holds the working set of matched candidate records while
// the user reviews and corrects them before commit.
//
// The session is a plain mutable aggregate with no rendering concerns; the
// CLI prompter and the TUI both wrap it. All mutations are synchronous,
// index-addressed, and last-edit-wins.
package preview

import (
	"fmt"
	"time"

	"github.com/fleetledger/fleetledger/internal/match"
	"github.com/fleetledger/fleetledger/internal/model"
)

// Session owns the entry list for one import run. It is not safe for
// concurrent use; the import flow is single-threaded by construction.
type Session struct {
	snapshot *model.ReferenceSnapshot
	entries  []model.PreviewEntry
}

// NewSession runs the matcher over every record once and returns the seeded
// session. Re-running an import builds a fresh session; there is no
// incremental re-matching.
func NewSession(records []model.CandidateRecord, snapshot *model.ReferenceSnapshot) *Session {
	entries := make([]model.PreviewEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, match.Resolve(record, snapshot))
	}
	return &Session{
		snapshot: snapshot,
		entries:  entries,
	}
}

// Entries returns the current working list. Callers must treat it as
// read-only; mutations go through the Set*/Remove methods.
func (s *Session) Entries() []model.PreviewEntry {
	return s.entries
}

// Len returns the number of entries currently in the session.
func (s *Session) Len() int {
	return len(s.entries)
}

// Snapshot returns the reference data this session matches against.
func (s *Session) Snapshot() *model.ReferenceSnapshot {
	return s.snapshot
}

// MatchedCount returns the number of entries with a resolved vehicle.
func (s *Session) MatchedCount() int {
	count := 0
	for i := range s.entries {
		if s.entries[i].Matched() {
			count++
		}
	}
	return count
}

// UnmatchedCount returns the number of entries without a resolved vehicle.
func (s *Session) UnmatchedCount() int {
	return len(s.entries) - s.MatchedCount()
}

// TotalAmount returns the sum of amounts across all current entries,
// matched or not.
func (s *Session) TotalAmount() float64 {
	total := 0.0
	for i := range s.entries {
		total += s.entries[i].Amount
	}
	return total
}

// CanCommit reports whether the session has anything committable. The commit
// executor re-derives this independently.
func (s *Session) CanCommit() bool {
	return len(s.entries) > 0 && s.MatchedCount() > 0
}

// SetVehicle assigns a vehicle from the snapshot by id, or clears the link
// when id is 0. Assigning a vehicle to an entry whose branch is unresolved
// also derives the branch from the vehicle's home branch, mirroring the
// matcher's fallback rule.
func (s *Session) SetVehicle(index int, vehicleID int64) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}

	if vehicleID == 0 {
		entry.Vehicle = nil
		return nil
	}

	vehicle := s.snapshot.VehicleByID(vehicleID)
	if vehicle == nil {
		return fmt.Errorf("unknown vehicle id %d", vehicleID)
	}
	entry.Vehicle = vehicle
	if entry.Branch == nil {
		entry.Branch = s.snapshot.BranchByID(vehicle.BranchID)
	}
	return nil
}

// SetBranch assigns a branch by id, or clears it when id is 0.
func (s *Session) SetBranch(index int, branchID int64) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}

	if branchID == 0 {
		entry.Branch = nil
		return nil
	}

	branch := s.snapshot.BranchByID(branchID)
	if branch == nil {
		return fmt.Errorf("unknown branch id %d", branchID)
	}
	entry.Branch = branch
	return nil
}

// SetCategory assigns a category by id, or clears it when id is 0.
func (s *Session) SetCategory(index int, categoryID int64) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}

	if categoryID == 0 {
		entry.Category = nil
		return nil
	}

	category := s.snapshot.CategoryByID(categoryID)
	if category == nil {
		return fmt.Errorf("unknown category id %d", categoryID)
	}
	entry.Category = category
	return nil
}

// SetDate overwrites an entry's date.
func (s *Session) SetDate(index int, date time.Time) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}
	entry.Date = date
	return nil
}

// SetAmount overwrites an entry's amount. Negative amounts are rejected.
func (s *Session) SetAmount(index int, amount float64) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	entry.Amount = amount
	return nil
}

// SetDescription overwrites an entry's description.
func (s *Session) SetDescription(index int, description string) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}
	entry.Description = description
	return nil
}

// SetOdometer overwrites an entry's odometer reading; nil clears it.
func (s *Session) SetOdometer(index int, odometer *int64) error {
	entry, err := s.entry(index)
	if err != nil {
		return err
	}
	if odometer != nil && *odometer < 0 {
		return fmt.Errorf("odometer cannot be negative")
	}
	entry.Odometer = odometer
	return nil
}

// Remove deletes the entry at index from the working list.
func (s *Session) Remove(index int) error {
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("entry index %d out of range", index)
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return nil
}

// Reset discards the working list. Called when the session is torn down
// after commit.
func (s *Session) Reset() {
	s.entries = nil
}

func (s *Session) entry(index int) (*model.PreviewEntry, error) {
	if index < 0 || index >= len(s.entries) {
		return nil, fmt.Errorf("entry index %d out of range", index)
	}
	return &s.entries[index], nil
}
