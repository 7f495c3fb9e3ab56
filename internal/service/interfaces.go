// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/fleetledger/fleetledger/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	VehicleID *int64
	BranchID  *int64
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Registry operations
	CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error
	GetVehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	CreateBranch(ctx context.Context, branch *model.Branch) error
	GetBranchByID(ctx context.Context, id int64) (*model.Branch, error)
	ListBranches(ctx context.Context) ([]model.Branch, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)

	// Reference snapshot for one import session
	Snapshot(ctx context.Context) (*model.ReferenceSnapshot, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]float64, error)
	GetBranchSummary(ctx context.Context, start, end time.Time) (map[string]float64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ImportSummary shows the results of one commit run.
type ImportSummary struct {
	Imported int
	Failed   int
}

// Total returns the number of commit attempts made.
func (s ImportSummary) Total() int {
	return s.Imported + s.Failed
}

// ReportSummary contains aggregate information for the expense report.
type ReportSummary struct {
	ByCategory  map[string]float64
	ByBranch    map[string]float64
	DateRange   DateRange
	TotalAmount float64
	Count       int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
