package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard shortcuts for the review screen.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	EditVehicle  key.Binding
	EditBranch   key.Binding
	EditCategory key.Binding
	EditDate     key.Binding
	EditAmount   key.Binding
	EditDesc     key.Binding
	EditOdometer key.Binding
	Remove       key.Binding

	Commit key.Binding
	Quit   key.Binding
	Help   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn", "page down"),
		),
		EditVehicle: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vehicle"),
		),
		EditBranch: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "branch"),
		),
		EditCategory: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "category"),
		),
		EditDate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "date"),
		),
		EditAmount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "amount"),
		),
		EditDesc: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "description"),
		),
		EditOdometer: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "odometer"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove entry"),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "commit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
