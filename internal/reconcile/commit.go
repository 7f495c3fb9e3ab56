package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/preview"
	"github.com/fleetledger/fleetledger/internal/service"
)

// commit writes every vehicle-resolved entry to the store, one independent
// insert at a time. Entries without a resolved vehicle are excluded and never
// written. A failed insert is logged and counted while siblings still run;
// there is no transaction, rollback, or retry across the batch.
func (e *Engine) commit(ctx context.Context, session *preview.Session) (service.ImportSummary, error) {
	var summary service.ImportSummary

	entries := session.Entries()
	committable := make([]model.PreviewEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Matched() {
			committable = append(committable, entry)
		}
	}

	// Re-derive the session guard rather than trusting the caller's UI state.
	if len(committable) == 0 {
		return summary, common.ErrNothingMatched
	}

	total := len(committable)
	slog.Info("Committing entries",
		"committable", total,
		"excluded", len(entries)-total)

	for i, entry := range committable {
		expense := buildExpense(entry)
		if err := e.storage.CreateExpense(ctx, expense); err != nil {
			summary.Failed++
			slog.Error("Failed to import record",
				"source", entry.Record.SourceFile,
				"line", entry.Record.LineNumber,
				"vehicle", entry.Vehicle.Plate,
				"error", err)
		} else {
			summary.Imported++
		}

		if e.progress != nil {
			e.progress(i+1, total)
		}
		slog.Debug("Commit progress", "percent", commitPercent(i+1, total))
	}

	slog.Info("Commit finished",
		"imported", summary.Imported,
		"failed", summary.Failed)
	return summary, nil
}

// buildExpense maps a preview entry onto the persisted expense shape.
func buildExpense(entry model.PreviewEntry) *model.Expense {
	expense := &model.Expense{
		VehicleID:   entry.Vehicle.ID,
		Date:        entry.Date,
		Amount:      entry.Amount,
		Description: entry.Description,
		Odometer:    entry.Odometer,
		Source:      entry.Record.SourceFile,
	}

	if entry.Branch != nil {
		id := entry.Branch.ID
		expense.BranchID = &id
	}
	if entry.Category != nil {
		id := entry.Category.ID
		expense.CategoryID = &id
	}
	if expense.Description == "" {
		expense.Description = fmt.Sprintf("Imported from %s", entry.Record.SourceFile)
	}

	return expense
}

// commitPercent is monotonically non-decreasing across a commit run.
func commitPercent(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}
