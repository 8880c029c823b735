// Package tui is the interactive rejection dashboard.
package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/glassline/internal/aggregate"
	"github.com/Veraticus/glassline/internal/cli"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// View represents the current dashboard tab.
type View int

// Dashboard tabs.
const (
	ViewWeekly View = iota
	ViewReason
	ViewType
	ViewDept
	ViewRecords
	viewCount
)

var viewNames = [...]string{"Weekly", "Reason", "Type", "Dept.", "Records"}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return "View(" + strconv.Itoa(int(v)) + ")"
	}
	return viewNames[v]
}

const (
	maxTopN       = 20
	defaultHeight = 15
	chromeHeight  = 9
	barWidth      = 24
)

// Loader fetches a fresh record set for the reload key.
type Loader func() (model.RecordSet, error)

// Options configure the initial dashboard state.
type Options struct {
	Loader  Loader
	Title   string
	Quarter string
	Year    int
	TopN    int
	View    View
}

type recordsLoadedMsg struct {
	err error
	set model.RecordSet
}

// Model holds the dashboard state.
type Model struct {
	err        error
	loader     Loader
	title      string
	set        model.RecordSet
	theme      Theme
	years      []int
	quarters   []string
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	table      table.Model
	yearIdx    int
	quarterIdx int // -1 is every quarter
	topN       int
	total      int
	width      int
	view       View
	loading    bool
	quitting   bool
}

// New creates a dashboard over set.
func New(set model.RecordSet, opts Options) Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(defaultHeight),
	)
	s := table.DefaultStyles()
	s.Header = DefaultTheme.Header
	s.Selected = DefaultTheme.Selected
	t.SetStyles(s)

	title := opts.Title
	if title == "" {
		title = "Glass Rejections"
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = aggregate.DefaultTopN
	}
	view := opts.View
	if view < 0 || view >= viewCount {
		view = ViewWeekly
	}

	m := Model{
		loader:     opts.Loader,
		title:      title,
		theme:      DefaultTheme,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		table:      t,
		topN:       topN,
		view:       view,
		quarterIdx: -1,
	}
	m.setRecords(set)
	m.selectYear(opts.Year)
	m.selectQuarter(opts.Quarter)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case recordsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			year := m.Year()
			quarter := m.Quarter()
			m.setRecords(msg.set)
			m.selectYear(year)
			m.selectQuarter(quarter)
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKey applies dashboard shortcuts; it leaves table movement to the table.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.NextView):
		m.view = (m.view + 1) % viewCount
	case key.Matches(msg, m.keymap.PrevView):
		m.view = (m.view + viewCount - 1) % viewCount
	case key.Matches(msg, m.keymap.NextYear):
		if m.yearIdx < len(m.years)-1 {
			m.yearIdx++
		}
	case key.Matches(msg, m.keymap.PrevYear):
		if m.yearIdx > 0 {
			m.yearIdx--
		}
	case key.Matches(msg, m.keymap.NextQuarter):
		if len(m.quarters) > 0 {
			m.quarterIdx = (m.quarterIdx+2)%(len(m.quarters)+1) - 1
		}
	case key.Matches(msg, m.keymap.PrevQuarter):
		if len(m.quarters) > 0 {
			m.quarterIdx = (m.quarterIdx+len(m.quarters)+1)%(len(m.quarters)+1) - 1
		}
	case key.Matches(msg, m.keymap.MoreTypes):
		m.topN = min(m.topN+1, maxTopN)
	case key.Matches(msg, m.keymap.FewerTypes):
		m.topN = max(m.topN-1, 1)
	case key.Matches(msg, m.keymap.Refresh):
		if m.loader == nil || m.loading {
			return nil, true
		}
		m.loading = true
		return tea.Batch(m.spinner.Tick, m.load()), true
	default:
		return nil, false
	}

	m.refresh()
	return nil, true
}

func (m Model) load() tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		set, err := loader()
		return recordsLoadedMsg{set: set, err: err}
	}
}

// CurrentView returns the selected tab.
func (m Model) CurrentView() View {
	return m.view
}

// Year returns the selected year, or 0 when no record is dated.
func (m Model) Year() int {
	if len(m.years) == 0 {
		return 0
	}
	return m.years[m.yearIdx]
}

// Quarter returns the selected department quarter, or "" for all quarters.
func (m Model) Quarter() string {
	if m.quarterIdx < 0 || m.quarterIdx >= len(m.quarters) {
		return ""
	}
	return m.quarters[m.quarterIdx]
}

// TopN returns the number of glass types on the type tab.
func (m Model) TopN() int {
	return m.topN
}

// Total returns the qty total of the current tab.
func (m Model) Total() int {
	return m.total
}

// Rows returns the rows of the current tab.
func (m Model) Rows() []table.Row {
	return m.table.Rows()
}

func (m *Model) setRecords(set model.RecordSet) {
	m.set = set
	m.years = aggregate.Years(set)
	m.quarters = aggregate.Quarters(set)
}

// selectYear picks year when present, else the latest year.
func (m *Model) selectYear(year int) {
	m.yearIdx = max(len(m.years)-1, 0)
	if i := slices.Index(m.years, year); i >= 0 {
		m.yearIdx = i
	}
}

func (m *Model) selectQuarter(quarter string) {
	m.quarterIdx = slices.Index(m.quarters, quarter)
}

// refresh recomputes the table for the current tab and filters.
func (m *Model) refresh() {
	var (
		columns []table.Column
		rows    []table.Row
		groups  []aggregate.Group
	)

	year := m.Year()
	switch m.view {
	case ViewWeekly:
		groups = aggregate.Weekly(m.set, year)
		columns, rows = weeklyTable(groups)
	case ViewReason:
		groups = aggregate.ByReason(m.set, year)
		columns, rows = groupTable("Reason", groups)
	case ViewType:
		groups = aggregate.ByType(m.set, year, m.topN)
		columns, rows = groupTable("Type", groups)
	case ViewDept:
		if q := m.Quarter(); q != "" {
			groups = aggregate.ByDept(m.set, q)
		} else {
			groups = aggregate.ByKey(m.set, aggregate.KeyDept)
		}
		columns, rows = groupTable("Dept.", groups)
	case ViewRecords:
		columns, rows = recordTable(m.set)
	}

	if m.view == ViewRecords {
		m.total = m.set.TotalQty()
	} else {
		m.total = aggregate.Total(groups)
	}

	// Clear rows first: the table renders existing rows against the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func weeklyTable(groups []aggregate.Group) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Week#", Width: 6},
		{Title: "Qty", Width: 6},
		{Title: "", Width: barWidth},
		{Title: "", Width: 7},
	}
	if len(groups) == 0 {
		return columns, nil
	}

	byWeek := make(map[int]int, len(groups))
	for _, g := range groups {
		byWeek[g.Order] = g.Qty
	}
	peak := peakQty(groups)

	var rows []table.Row
	for week := 1; week <= 53; week++ {
		qty, ok := byWeek[week]
		mark := ""
		if i := slices.Index(aggregate.QuarterMarkers, week); i >= 0 {
			mark = fmt.Sprintf("Q%d end", i+1)
		}
		if !ok && mark == "" {
			continue
		}
		cell := ""
		if ok {
			cell = strconv.Itoa(qty)
		}
		rows = append(rows, table.Row{strconv.Itoa(week), cell, bar(qty, peak), mark})
	}
	return columns, rows
}

func groupTable(keyHeader string, groups []aggregate.Group) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: keyHeader, Width: 24},
		{Title: "Qty", Width: 6},
		{Title: "Share", Width: 7},
		{Title: "", Width: barWidth},
	}

	total := aggregate.Total(groups)
	peak := peakQty(groups)
	rows := make([]table.Row, 0, len(groups))
	for _, g := range groups {
		pct := 0.0
		if total > 0 {
			pct = float64(g.Qty) * 100 / float64(total)
		}
		rows = append(rows, table.Row{g.Label, strconv.Itoa(g.Qty), fmt.Sprintf("%.1f%%", pct), bar(g.Qty, peak)})
	}
	return columns, rows
}

func recordTable(set model.RecordSet) ([]table.Column, []table.Row) {
	widths := []int{10, 5, 9, 9, 10, 16, 5, 12, 10, 10}
	columns := make([]table.Column, len(cli.RecordHeader))
	for i, h := range cli.RecordHeader {
		columns[i] = table.Column{Title: fmt.Sprint(h), Width: widths[i]}
	}

	rows := make([]table.Row, 0, set.Len())
	set.NewestFirst().Each(func(_ int, r model.Record) {
		cells := cli.RecordRow(r)
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = fmt.Sprint(c)
		}
		rows = append(rows, row)
	})
	return columns, rows
}

func peakQty(groups []aggregate.Group) int {
	peak := 0
	for _, g := range groups {
		peak = max(peak, g.Qty)
	}
	return peak
}

func bar(qty, peak int) string {
	if peak <= 0 || qty <= 0 {
		return ""
	}
	return strings.Repeat("█", max(qty*barWidth/peak, 1))
}
