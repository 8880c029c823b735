package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(m.filterLine()))
	b.WriteString("\n\n")

	if len(m.table.Rows()) == 0 {
		b.WriteString(m.theme.Muted.Render("No records for this view."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Total: %d", m.total))
	if m.loading {
		b.WriteString("  " + m.spinner.View() + " reloading")
	}
	if m.err != nil {
		b.WriteString("\n" + m.theme.StatusError.Render("Reload failed: "+m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keymap))

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		style := m.theme.Tab
		if v == m.view {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(v.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) filterLine() string {
	year := "no dated records"
	if y := m.Year(); y != 0 {
		year = fmt.Sprintf("Year %d", y)
	}

	switch m.view {
	case ViewWeekly, ViewReason:
		return year
	case ViewType:
		return fmt.Sprintf("%s · top %d types", year, m.topN)
	case ViewDept:
		if q := m.Quarter(); q != "" {
			return "Quarter " + q
		}
		return "All quarters"
	default:
		return fmt.Sprintf("%d records, newest first", m.set.Len())
	}
}
