package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Logs       key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// List
	Open        key.Binding
	Reload      key.Binding
	CycleStatus key.Binding
	CycleRead   key.Binding
	Search      key.Binding

	// Offer actions
	ToggleRead  key.Binding
	AdvanceStep key.Binding
	Confirm     key.Binding
	ConfirmAll  key.Binding

	// Session
	Session key.Binding
	Logout  key.Binding

	// Search input
	Submit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to list"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Client log"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		// List
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Offer detail"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filter by status"),
		),
		CycleRead: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Filter by read"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Keyword"),
		),

		// Offer actions
		ToggleRead: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Toggle read (admin)"),
		),
		AdvanceStep: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Next status (admin)"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Confirm offer"),
		),
		ConfirmAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Confirm all"),
		),

		// Session
		Session: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Re-check session"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log out"),
		),

		// Search input
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.CycleStatus, k.CycleRead, k.Search, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		// List
		{k.Open, k.Reload, k.CycleStatus, k.CycleRead, k.Search},
		// Offers
		{k.ToggleRead, k.AdvanceStep, k.Confirm, k.ConfirmAll},
		// General
		{k.Logs, k.Session, k.Logout, k.CycleTheme, k.Help, k.Quit},
	}
}
