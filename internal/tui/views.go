package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("🚚 Import preview"))
	sb.WriteString("\n")
	sb.WriteString(statsStyle.Render(fmt.Sprintf(
		"%d entries · %d matched · %d unmatched · total $%.2f",
		m.session.Len(), m.session.MatchedCount(),
		m.session.UnmatchedCount(), m.session.TotalAmount())))
	sb.WriteString("\n\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	switch m.mode {
	case modePick:
		sb.WriteString(m.pickView())
	case modeInput:
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	case modeConfirm:
		sb.WriteString(statusStyle.Render(fmt.Sprintf(
			"Import %d matched of %d entries totaling $%.2f? [y/N]",
			m.session.MatchedCount(), m.session.Len(), m.session.TotalAmount())))
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status))
		sb.WriteString("\n")
	}

	if m.showHelp {
		sb.WriteString(helpStyle.Render(
			"↑/↓ move · v vehicle · b branch · t category · d date · a amount\n" +
				"e description · o odometer · x remove · c commit · q quit"))
	} else {
		sb.WriteString(helpStyle.Render("c commit · q quit · ? help"))
	}
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) pickView() string {
	var sb strings.Builder

	var title string
	var names []string
	snapshot := m.session.Snapshot()
	switch m.picking {
	case pickVehicle:
		title = "Select vehicle"
		for _, v := range snapshot.Vehicles {
			names = append(names, v.DisplayName())
		}
	case pickBranch:
		title = "Select branch"
		for _, b := range snapshot.Branches {
			names = append(names, b.Name)
		}
	case pickCategory:
		title = "Select category"
		for _, c := range snapshot.Categories {
			names = append(names, c.Name)
		}
	}

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	options := append([]string{"(clear)"}, names...)
	for i, name := range options {
		if i == m.pickCursor {
			sb.WriteString(cursorStyle.Render("> " + name))
		} else {
			sb.WriteString("  " + name)
		}
		sb.WriteString("\n")
	}

	return pickStyle.Render(sb.String()) + "\n"
}
