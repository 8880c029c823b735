package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/glassline/internal/model"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date, glassType, reason, dept string, qty int) model.Record {
	r := model.Record{Type: glassType, Reason: reason, Dept: dept, Qty: qty}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		derived := model.Derive(d)
		r.Date = &d
		r.Derived = &derived
	}
	return r
}

func sampleSet() model.RecordSet {
	return model.NewRecordSet([]model.Record{
		rec("2023-06-06", "Clear", "Missing", "Shipping", 4),
		rec("2024-01-01", "Clear", "Scratched", "Cutting", 2),
		rec("2024-01-02", "Clear", "scratched ", "Cutting", 1),
		rec("2024-03-25", "Low-E", "Broken", "Patio Doors", 7),
		rec("2024-12-23", "Tinted", "Broken", "Cutting", 10),
		rec("", "Clear", "Broken", "Cutting", 1),
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func firstColumn(rows []table.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	m := New(sampleSet(), Options{})

	assert.Equal(t, ViewWeekly, m.CurrentView())
	assert.Equal(t, 2024, m.Year())
	assert.Equal(t, "", m.Quarter())
	assert.Equal(t, 5, m.TopN())
	assert.Equal(t, 20, m.Total())

	weeks := firstColumn(m.Rows())
	assert.Contains(t, weeks, "1")
	assert.Contains(t, weeks, "13")
	assert.Contains(t, weeks, "52")
	assert.NotContains(t, weeks, "2")
}

func TestNew_Options(t *testing.T) {
	m := New(sampleSet(), Options{Year: 2023, Quarter: "2024Q1", TopN: 2, View: ViewDept})

	assert.Equal(t, 2023, m.Year())
	assert.Equal(t, "2024Q1", m.Quarter())
	assert.Equal(t, []string{"Patio Doors", "Cutting"}, firstColumn(m.Rows()))
	assert.Equal(t, 10, m.Total())
}

func TestUpdate_SwitchViews(t *testing.T) {
	m := New(sampleSet(), Options{})

	tests := []struct {
		key       tea.KeyMsg
		wantView  View
		wantFirst string
		wantTotal int
	}{
		{key: tea.KeyMsg{Type: tea.KeyTab}, wantView: ViewReason, wantFirst: "Broken", wantTotal: 20},
		{key: runes("l"), wantView: ViewType, wantFirst: "Tinted", wantTotal: 20},
		{key: tea.KeyMsg{Type: tea.KeyRight}, wantView: ViewDept, wantFirst: "Cutting", wantTotal: 25},
		{key: tea.KeyMsg{Type: tea.KeyTab}, wantView: ViewRecords, wantFirst: "2024-12-23", wantTotal: 25},
		{key: tea.KeyMsg{Type: tea.KeyTab}, wantView: ViewWeekly, wantFirst: "1", wantTotal: 20},
		{key: tea.KeyMsg{Type: tea.KeyShiftTab}, wantView: ViewRecords, wantFirst: "2024-12-23", wantTotal: 25},
	}

	for _, tt := range tests {
		var cmd tea.Cmd
		m, cmd = update(t, m, tt.key)
		assert.Nil(t, cmd)
		assert.Equal(t, tt.wantView, m.CurrentView(), tt.wantView.String())
		require.NotEmpty(t, m.Rows(), tt.wantView.String())
		assert.Equal(t, tt.wantFirst, m.Rows()[0][0], tt.wantView.String())
		assert.Equal(t, tt.wantTotal, m.Total(), tt.wantView.String())
	}
}

func TestUpdate_RecordsUndatedLast(t *testing.T) {
	m := New(sampleSet(), Options{View: ViewRecords})
	rows := m.Rows()
	require.Len(t, rows, 6)
	assert.Equal(t, "", rows[5][0])
	assert.Equal(t, "Broken", rows[5][5])
}

func TestUpdate_YearNavigation(t *testing.T) {
	m := New(sampleSet(), Options{View: ViewReason})

	m, _ = update(t, m, runes("]"))
	assert.Equal(t, 2024, m.Year(), "already at the latest year")

	m, _ = update(t, m, runes("["))
	assert.Equal(t, 2023, m.Year())
	assert.Equal(t, []string{"Missing"}, firstColumn(m.Rows()))
	assert.Equal(t, 4, m.Total())

	m, _ = update(t, m, runes("["))
	assert.Equal(t, 2023, m.Year(), "already at the earliest year")
}

func TestUpdate_QuarterCycle(t *testing.T) {
	m := New(sampleSet(), Options{View: ViewDept})

	var got []string
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, runes("}"))
		got = append(got, m.Quarter())
	}
	assert.Equal(t, []string{"2023Q2", "2024Q1", "2024Q4", "", "2023Q2"}, got)

	m, _ = update(t, m, runes("{"))
	assert.Equal(t, "", m.Quarter())
	m, _ = update(t, m, runes("{"))
	assert.Equal(t, "2024Q4", m.Quarter())
	assert.Equal(t, []string{"Cutting"}, firstColumn(m.Rows()))
}

func TestUpdate_TopN(t *testing.T) {
	m := New(sampleSet(), Options{View: ViewType, TopN: 1})
	assert.Len(t, m.Rows(), 1)

	m, _ = update(t, m, runes("+"))
	assert.Equal(t, 2, m.TopN())
	assert.Len(t, m.Rows(), 2)

	m, _ = update(t, m, runes("-"))
	m, _ = update(t, m, runes("-"))
	assert.Equal(t, 1, m.TopN())
}

func TestUpdate_Quit(t *testing.T) {
	m := New(sampleSet(), Options{})
	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", m.View())
}

func TestUpdate_Reload(t *testing.T) {
	calls := 0
	fresh := model.NewRecordSet([]model.Record{rec("2025-02-03", "Clear", "Chipped", "Cutting", 3)})
	m := New(sampleSet(), Options{View: ViewReason, Loader: func() (model.RecordSet, error) {
		calls++
		return fresh, nil
	}})

	m, cmd := update(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "reloading")

	m, _ = update(t, m, m.load()())
	assert.Equal(t, 1, calls)
	assert.False(t, m.loading)
	assert.Equal(t, 2025, m.Year())
	assert.Equal(t, []string{"Chipped"}, firstColumn(m.Rows()))
}

func TestUpdate_ReloadError(t *testing.T) {
	m := New(sampleSet(), Options{Loader: func() (model.RecordSet, error) {
		return model.RecordSet{}, errors.New("sheet unavailable")
	}})

	m, _ = update(t, m, runes("r"))
	m, _ = update(t, m, m.load()())

	assert.Equal(t, 2024, m.Year(), "records kept after a failed reload")
	assert.Contains(t, m.View(), "sheet unavailable")
}

func TestUpdate_ReloadWithoutLoader(t *testing.T) {
	m := New(sampleSet(), Options{})
	m, cmd := update(t, m, runes("r"))
	assert.Nil(t, cmd)
	assert.False(t, m.loading)
}

func TestView(t *testing.T) {
	m := New(sampleSet(), Options{Title: "Line 2 Rejections"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	for _, want := range []string{"Line 2 Rejections", "Weekly", "Records", "Year 2024", "Total: 20", "Q1 end"} {
		assert.Contains(t, out, want)
	}

	m, _ = update(t, m, runes("?"))
	assert.Contains(t, m.View(), "next quarter")
}

func TestView_Empty(t *testing.T) {
	m := New(model.NewRecordSet(nil), Options{})
	assert.Equal(t, 0, m.Year())
	out := m.View()
	assert.Contains(t, out, "no dated records")
	assert.Contains(t, out, "No records for this view.")
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "Dept.", ViewDept.String())
	assert.Equal(t, "View(9)", View(9).String())
}
