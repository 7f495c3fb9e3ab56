package model

import "time"

// Expense is one persisted expense record against a vehicle.
type Expense struct {
	Date        time.Time
	CreatedAt   time.Time
	Description string
	Source      string
	BranchID    *int64
	CategoryID  *int64
	Odometer    *int64
	ID          int64
	VehicleID   int64
	Amount      float64
}
