package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the dashboard.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	ActiveTab   lipgloss.Style
	Tab         lipgloss.Style
	Header      lipgloss.Style
	Selected    lipgloss.Style
	Bar         lipgloss.Style
	StatusError lipgloss.Style
	Muted       lipgloss.Style
	Primary     lipgloss.Color
	Border      lipgloss.Color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#4EA8DE"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	ActiveTab: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#4EA8DE")).
		Padding(0, 1),
	Tab: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Padding(0, 1),
	Header: lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		BorderBottom(true).
		Bold(false),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#4EA8DE")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Bar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4EA8DE")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
}
