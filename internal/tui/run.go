package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fleetledger/fleetledger/internal/preview"
)

// Reviewer runs the full-screen review UI. It satisfies reconcile.Reviewer.
type Reviewer struct{}

// Review launches the review program and reports whether the user committed.
func (Reviewer) Review(ctx context.Context, session *preview.Session) (bool, error) {
	program := tea.NewProgram(
		NewModel(session),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("review ui failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected final model type %T", final)
	}
	return m.Committed(), nil
}
