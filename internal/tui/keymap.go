package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	NextView key.Binding
	PrevView key.Binding

	// Filters
	NextYear    key.Binding
	PrevYear    key.Binding
	NextQuarter key.Binding
	PrevQuarter key.Binding
	MoreTypes   key.Binding
	FewerTypes  key.Binding

	// Application
	Refresh    key.Binding
	ToggleHelp key.Binding
	Quit       key.Binding
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
		NextView: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("Tab/→", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-Tab/←", "previous view"),
		),

		NextYear: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next year"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous year"),
		),
		NextQuarter: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "next quarter"),
		),
		PrevQuarter: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "previous quarter"),
		),
		MoreTypes: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more types"),
		),
		FewerTypes: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "fewer types"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "r"),
			key.WithHelp("r", "reload"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/Esc", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.NextYear, k.ToggleHelp, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextView, k.PrevView},
		{k.NextYear, k.PrevYear, k.NextQuarter, k.PrevQuarter},
		{k.MoreTypes, k.FewerTypes, k.Refresh},
		{k.ToggleHelp, k.Quit},
	}
}
