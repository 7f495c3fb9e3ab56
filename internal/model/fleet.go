// Package model defines the core domain types shared across the application.
package model

import (
	"strings"
	"time"
)

// Vehicle is one fleet vehicle in the registry.
type Vehicle struct {
	CreatedAt time.Time
	Plate     string
	VIN       string
	Make      string
	Model     string
	ID        int64
	BranchID  int64
}

// DisplayName returns a human-readable identifier for the vehicle.
func (v *Vehicle) DisplayName() string {
	parts := make([]string, 0, 3)
	if v.Plate != "" {
		parts = append(parts, v.Plate)
	}
	if v.Make != "" || v.Model != "" {
		parts = append(parts, strings.TrimSpace(v.Make+" "+v.Model))
	}
	if len(parts) == 0 {
		return v.VIN
	}
	return strings.Join(parts, " · ")
}

// Branch is a physical location vehicles are assigned to.
type Branch struct {
	CreatedAt time.Time
	Name      string
	Location  string
	ID        int64
}

// CategoryType distinguishes the broad kinds of fleet expenses.
type CategoryType string

// Category types.
const (
	CategoryTypeFuel        CategoryType = "fuel"
	CategoryTypeMaintenance CategoryType = "maintenance"
	CategoryTypeOther       CategoryType = "other"
)

// Category is an expense category (e.g. Fuel, Tires, Tolls).
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	ID        int64
}

// ReferenceSnapshot is a read-only copy of the registry taken once per
// import session. The matcher resolves free-text fields against it; staleness
// over the life of one interactive session is accepted.
type ReferenceSnapshot struct {
	Vehicles   []Vehicle
	Branches   []Branch
	Categories []Category
}

// BranchByID returns the branch with the given id, or nil.
func (s *ReferenceSnapshot) BranchByID(id int64) *Branch {
	for i := range s.Branches {
		if s.Branches[i].ID == id {
			return &s.Branches[i]
		}
	}
	return nil
}

// VehicleByID returns the vehicle with the given id, or nil.
func (s *ReferenceSnapshot) VehicleByID(id int64) *Vehicle {
	for i := range s.Vehicles {
		if s.Vehicles[i].ID == id {
			return &s.Vehicles[i]
		}
	}
	return nil
}

// CategoryByID returns the category with the given id, or nil.
func (s *ReferenceSnapshot) CategoryByID(id int64) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}
