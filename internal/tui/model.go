package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetledger/fleetledger/internal/preview"
)

type mode int

const (
	modeBrowse mode = iota
	modePick
	modeInput
	modeConfirm
)

type pickKind int

const (
	pickVehicle pickKind = iota
	pickBranch
	pickCategory
)

type inputField int

const (
	fieldDate inputField = iota
	fieldAmount
	fieldDescription
	fieldOdometer
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FAFFF"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	pickStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FAFFF")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FAFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Model is the bubbletea model for the import review screen.
type Model struct {
	session *preview.Session
	keys    KeyMap
	table   table.Model
	input   textinput.Model

	mode       mode
	picking    pickKind
	pickCursor int
	field      inputField
	status     string
	showHelp   bool

	committed bool
	width     int
	height    int
}

// NewModel builds a review model over the given session.
func NewModel(session *preview.Session) Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 11},
		{Title: "Vehicle", Width: 22},
		{Title: "Branch", Width: 14},
		{Title: "Category", Width: 12},
		{Title: "Amount", Width: 10},
		{Title: "Description", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#5FAFFF"))
	t.SetStyles(styles)

	input := textinput.New()
	input.CharLimit = 120

	m := Model{
		session: session,
		keys:    DefaultKeyMap(),
		table:   t,
		input:   input,
	}
	m.refreshRows()
	return m
}

// Committed reports whether the user chose to commit the session.
func (m Model) Committed() bool {
	return m.committed
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(5, msg.Height-8))
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modePick:
			return m.updatePick(msg)
		case modeInput:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Commit):
		if !m.session.CanCommit() {
			m.status = "nothing to commit: no entries with a matched vehicle"
			return m, nil
		}
		m.mode = modeConfirm
		return m, nil
	case key.Matches(msg, m.keys.Remove):
		if err := m.session.Remove(m.table.Cursor()); err != nil {
			m.status = err.Error()
		}
		m.refreshRows()
		return m, nil
	case key.Matches(msg, m.keys.EditVehicle):
		return m.startPick(pickVehicle), nil
	case key.Matches(msg, m.keys.EditBranch):
		return m.startPick(pickBranch), nil
	case key.Matches(msg, m.keys.EditCategory):
		return m.startPick(pickCategory), nil
	case key.Matches(msg, m.keys.EditDate):
		return m.startInput(fieldDate, "YYYY-MM-DD"), nil
	case key.Matches(msg, m.keys.EditAmount):
		return m.startInput(fieldAmount, "0.00"), nil
	case key.Matches(msg, m.keys.EditDesc):
		return m.startInput(fieldDescription, "description"), nil
	case key.Matches(msg, m.keys.EditOdometer):
		return m.startInput(fieldOdometer, "miles (blank clears)"), nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) startPick(kind pickKind) Model {
	if m.session.Len() == 0 {
		return m
	}
	m.mode = modePick
	m.picking = kind
	m.pickCursor = 0
	return m
}

func (m Model) startInput(field inputField, placeholder string) Model {
	if m.session.Len() == 0 {
		return m
	}
	m.mode = modeInput
	m.field = field
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m Model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.pickCount()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.pickCursor > 0 {
			m.pickCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.pickCursor < count {
			m.pickCursor++
		}
		return m, nil
	}

	if msg.String() == "enter" {
		m.applyPick()
		m.mode = modeBrowse
		m.refreshRows()
	}
	return m, nil
}

// pickCount returns the number of selectable rows; index 0 is always "clear".
func (m Model) pickCount() int {
	snapshot := m.session.Snapshot()
	switch m.picking {
	case pickVehicle:
		return len(snapshot.Vehicles)
	case pickBranch:
		return len(snapshot.Branches)
	default:
		return len(snapshot.Categories)
	}
}

func (m *Model) applyPick() {
	index := m.table.Cursor()
	snapshot := m.session.Snapshot()

	var id int64
	switch m.picking {
	case pickVehicle:
		if m.pickCursor > 0 {
			id = snapshot.Vehicles[m.pickCursor-1].ID
		}
		if err := m.session.SetVehicle(index, id); err != nil {
			m.status = err.Error()
		}
	case pickBranch:
		if m.pickCursor > 0 {
			id = snapshot.Branches[m.pickCursor-1].ID
		}
		if err := m.session.SetBranch(index, id); err != nil {
			m.status = err.Error()
		}
	case pickCategory:
		if m.pickCursor > 0 {
			id = snapshot.Categories[m.pickCursor-1].ID
		}
		if err := m.session.SetCategory(index, id); err != nil {
			m.status = err.Error()
		}
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		m.applyInput()
		m.mode = modeBrowse
		m.input.Blur()
		m.refreshRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyInput() {
	index := m.table.Cursor()
	value := m.input.Value()

	switch m.field {
	case fieldDate:
		date, err := time.Parse("2006-01-02", value)
		if err != nil {
			m.status = "invalid date, expected YYYY-MM-DD"
			return
		}
		if err := m.session.SetDate(index, date); err != nil {
			m.status = err.Error()
		}
	case fieldAmount:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			m.status = "invalid amount"
			return
		}
		if err := m.session.SetAmount(index, amount); err != nil {
			m.status = err.Error()
		}
	case fieldDescription:
		if err := m.session.SetDescription(index, value); err != nil {
			m.status = err.Error()
		}
	case fieldOdometer:
		if value == "" {
			if err := m.session.SetOdometer(index, nil); err != nil {
				m.status = err.Error()
			}
			return
		}
		odo, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			m.status = "invalid odometer"
			return
		}
		if err := m.session.SetOdometer(index, &odo); err != nil {
			m.status = err.Error()
		}
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.committed = true
		return m, tea.Quit
	default:
		m.mode = modeBrowse
		return m, nil
	}
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, m.session.Len())
	for i, entry := range m.session.Entries() {
		date := "—"
		if !entry.Date.IsZero() {
			date = entry.Date.Format("2006-01-02")
		}
		vehicle := "unmatched"
		if entry.Vehicle != nil {
			vehicle = entry.Vehicle.DisplayName()
		}
		branch := "—"
		if entry.Branch != nil {
			branch = entry.Branch.Name
		}
		category := "—"
		if entry.Category != nil {
			category = entry.Category.Name
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			date,
			vehicle,
			branch,
			category,
			fmt.Sprintf("%.2f", entry.Amount),
			entry.Description,
		})
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}
