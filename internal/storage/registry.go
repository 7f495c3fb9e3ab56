package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/model"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// CreateVehicle inserts a new vehicle and sets its generated id.
func (s *SQLiteStorage) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVehicle(vehicle); err != nil {
		return err
	}

	// BranchID 0 means no home branch; stored as NULL to satisfy the
	// foreign key.
	branchID := sql.NullInt64{Int64: vehicle.BranchID, Valid: vehicle.BranchID != 0}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vehicles (plate, vin, make, model, branch_id)
		VALUES (?, ?, ?, ?, ?)
	`, vehicle.Plate, vehicle.VIN, vehicle.Make, vehicle.Model, branchID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: vehicle %s", common.ErrDuplicateEntry, vehicle.Plate)
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	vehicle.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get vehicle id: %w", err)
	}

	slog.Debug("created vehicle", "id", vehicle.ID, "plate", vehicle.Plate)
	return nil
}

// GetVehicleByID retrieves a vehicle by id.
func (s *SQLiteStorage) GetVehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var v model.Vehicle
	err := s.db.QueryRowContext(ctx, `
		SELECT id, plate, vin, make, model, COALESCE(branch_id, 0), created_at
		FROM vehicles
		WHERE id = ?
	`, id).Scan(&v.ID, &v.Plate, &v.VIN, &v.Make, &v.Model, &v.BranchID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vehicle %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// ListVehicles returns all vehicles ordered by plate.
func (s *SQLiteStorage) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plate, vin, make, model, COALESCE(branch_id, 0), created_at
		FROM vehicles
		ORDER BY plate
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.VIN, &v.Make, &v.Model, &v.BranchID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}

	return vehicles, nil
}

// CreateBranch inserts a new branch and sets its generated id.
func (s *SQLiteStorage) CreateBranch(ctx context.Context, branch *model.Branch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBranch(branch); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (name, location) VALUES (?, ?)
	`, branch.Name, branch.Location)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: branch %s", common.ErrDuplicateEntry, branch.Name)
		}
		return fmt.Errorf("failed to create branch: %w", err)
	}

	branch.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get branch id: %w", err)
	}

	return nil
}

// GetBranchByID retrieves a branch by id.
func (s *SQLiteStorage) GetBranchByID(ctx context.Context, id int64) (*model.Branch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var b model.Branch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, location, created_at FROM branches WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: branch %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	return &b, nil
}

// ListBranches returns all branches ordered by name.
func (s *SQLiteStorage) ListBranches(ctx context.Context) ([]model.Branch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, created_at FROM branches ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var branches []model.Branch
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branches: %w", err)
	}

	return branches, nil
}

// CreateCategory inserts a new expense category and sets its generated id.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if category.Type == "" {
		category.Type = model.CategoryTypeOther
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, type) VALUES (?, ?)
	`, category.Name, string(category.Type))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %s", common.ErrDuplicateEntry, category.Name)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	category.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}

	return nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, created_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Type = model.CategoryType(typ)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
