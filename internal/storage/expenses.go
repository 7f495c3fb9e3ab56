package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/service"
)

// CreateExpense inserts a single expense record and sets its generated id.
// Each insert is independent; batch semantics (partial success) live in the
// commit executor, not here.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (vehicle_id, branch_id, category_id, date, amount, description, odometer, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, expense.VehicleID, expense.BranchID, expense.CategoryID,
		expense.Date, expense.Amount, expense.Description, expense.Odometer, expense.Source)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense id: %w", err)
	}

	slog.Debug("created expense",
		"id", expense.ID,
		"vehicle_id", expense.VehicleID,
		"amount", expense.Amount)
	return nil
}

// ListExpenses returns expenses matching the filter, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.VehicleID != nil {
		conditions = append(conditions, "vehicle_id = ?")
		args = append(args, *filter.VehicleID)
	}
	if filter.BranchID != nil {
		conditions = append(conditions, "branch_id = ?")
		args = append(args, *filter.BranchID)
	}

	query := `
		SELECT id, vehicle_id, branch_id, category_id, date, amount, description, odometer, source, created_at
		FROM expenses`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.BranchID, &e.CategoryID,
			&e.Date, &e.Amount, &e.Description, &e.Odometer, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// GetCategorySummary returns total expense amounts keyed by category name for
// the given period. Expenses without a category are grouped under "Uncategorized".
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %v is before start date %v", end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, 'Uncategorized'), SUM(e.amount)
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.date >= ? AND e.date <= ?
		GROUP BY COALESCE(c.name, 'Uncategorized')
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]float64)
	for rows.Next() {
		var name string
		var total float64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summary[name] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}

	return summary, nil
}

// GetBranchSummary returns total expense amounts keyed by branch name for the
// given period. Expenses without a branch are grouped under "Unassigned".
func (s *SQLiteStorage) GetBranchSummary(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %v is before start date %v", end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(b.name, 'Unassigned'), SUM(e.amount)
		FROM expenses e
		LEFT JOIN branches b ON b.id = e.branch_id
		WHERE e.date >= ? AND e.date <= ?
		GROUP BY COALESCE(b.name, 'Unassigned')
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]float64)
	for rows.Next() {
		var name string
		var total float64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan branch summary: %w", err)
		}
		summary[name] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch summary: %w", err)
	}

	return summary, nil
}
