package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetledger/fleetledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidAmount = errors.New("amount cannot be negative")
	ErrInvalidDate   = errors.New("date cannot be zero")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateVehicle(vehicle *model.Vehicle) error {
	if vehicle == nil {
		return fmt.Errorf("%w: vehicle", ErrNilParameter)
	}
	if err := validateString(vehicle.Plate, "plate"); err != nil {
		return err
	}
	// BranchID 0 means no home branch.
	if vehicle.BranchID < 0 {
		return fmt.Errorf("vehicle %s: branch id cannot be negative", vehicle.Plate)
	}
	return nil
}

func validateBranch(branch *model.Branch) error {
	if branch == nil {
		return fmt.Errorf("%w: branch", ErrNilParameter)
	}
	return validateString(branch.Name, "name")
}

func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	return validateString(category.Name, "name")
}

func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.VehicleID <= 0 {
		return fmt.Errorf("expense: vehicle id must be positive")
	}
	if expense.Amount < 0 {
		return ErrInvalidAmount
	}
	if expense.Date.IsZero() {
		return ErrInvalidDate
	}
	if expense.Odometer != nil && *expense.Odometer < 0 {
		return fmt.Errorf("expense: odometer cannot be negative")
	}
	return nil
}
