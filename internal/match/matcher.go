// Package match resolves free-text fields from extracted records against a
// reference snapshot of the fleet registry.
//
// Matching is deliberately simple and deterministic: case-insensitive exact
// match on the primary identifier first, then substring containment in
// either direction. The first satisfying entry in input order wins; there is
// no scoring or edit-distance ranking.
package match

import (
	"strings"

	"github.com/fleetledger/fleetledger/internal/model"
)

// MatchVehicle resolves free text (a VIN, plate, or a longer string
// containing one) to a vehicle, or nil.
func MatchVehicle(text string, vehicles []model.Vehicle) *model.Vehicle {
	needle := normalize(text)
	if needle == "" {
		return nil
	}

	for i := range vehicles {
		v := &vehicles[i]
		if equalsFold(needle, v.VIN) || equalsFold(needle, v.Plate) {
			return v
		}
	}
	for i := range vehicles {
		v := &vehicles[i]
		if containsEitherWay(needle, v.VIN) || containsEitherWay(needle, v.Plate) {
			return v
		}
	}
	return nil
}

// MatchBranch resolves free text to a branch by name or location, or nil.
func MatchBranch(text string, branches []model.Branch) *model.Branch {
	needle := normalize(text)
	if needle == "" {
		return nil
	}

	for i := range branches {
		b := &branches[i]
		if equalsFold(needle, b.Name) {
			return b
		}
	}
	for i := range branches {
		b := &branches[i]
		if containsEitherWay(needle, b.Name) || containsEitherWay(needle, b.Location) {
			return b
		}
	}
	return nil
}

// MatchCategory resolves free text to a category by name, or nil.
func MatchCategory(text string, categories []model.Category) *model.Category {
	needle := normalize(text)
	if needle == "" {
		return nil
	}

	for i := range categories {
		c := &categories[i]
		if equalsFold(needle, c.Name) {
			return c
		}
	}
	for i := range categories {
		c := &categories[i]
		if containsEitherWay(needle, c.Name) {
			return c
		}
	}
	return nil
}

// Resolve matches all three free-text fields of a record and builds the
// initial preview entry. Branch resolution order: explicit branch-text
// match, then the matched vehicle's home branch, then unmatched. The vehicle
// fallback is the one cross-field inference rule in the system.
func Resolve(record model.CandidateRecord, snapshot *model.ReferenceSnapshot) model.PreviewEntry {
	entry := model.NewPreviewEntry(record)

	entry.Vehicle = MatchVehicle(record.VehicleText, snapshot.Vehicles)
	entry.Branch = MatchBranch(record.BranchText, snapshot.Branches)
	entry.Category = MatchCategory(record.CategoryText, snapshot.Categories)

	if entry.Branch == nil && entry.Vehicle != nil {
		entry.Branch = snapshot.BranchByID(entry.Vehicle.BranchID)
	}

	return entry
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

func equalsFold(needle, reference string) bool {
	return reference != "" && strings.EqualFold(needle, reference)
}

// containsEitherWay reports whether either string contains the other,
// case-insensitively.
func containsEitherWay(needle, reference string) bool {
	if reference == "" {
		return false
	}
	n := strings.ToLower(needle)
	r := strings.ToLower(reference)
	return strings.Contains(n, r) || strings.Contains(r, n)
}
