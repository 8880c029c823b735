package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/glassline/internal/aggregate"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	barWidth = 30
	maxWeek  = 53
)

// RenderGroups prints an aggregate table with a share column and a bar.
func RenderGroups(w io.Writer, title, keyHeader string, groups []aggregate.Group) {
	fmt.Fprintln(w, FormatTitle(title))
	if len(groups) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No records."))
		fmt.Fprintln(w)
		return
	}

	total := aggregate.Total(groups)
	peak := peakQty(groups)

	t := newTable(w)
	t.AppendHeader(table.Row{keyHeader, "Qty", "Share", ""})
	for _, g := range groups {
		t.AppendRow(table.Row{g.Label, g.Qty, share(g.Qty, total), bar(g.Qty, peak)})
	}
	t.AppendFooter(table.Row{"Total", total, "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(w)
}

// RenderWeekly prints the weekly view for year. Weeks on a quarter boundary are
// flagged even when they have no data.
func RenderWeekly(w io.Writer, year int, groups []aggregate.Group) {
	fmt.Fprintln(w, FormatTitle(fmt.Sprintf("Weekly Rejections %d", year)))
	if len(groups) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No dated records."))
		fmt.Fprintln(w)
		return
	}

	byWeek := make(map[int]int, len(groups))
	for _, g := range groups {
		byWeek[g.Order] = g.Qty
	}
	peak := peakQty(groups)

	t := newTable(w)
	t.AppendHeader(table.Row{"Week#", "Qty", "", ""})
	for week := 1; week <= maxWeek; week++ {
		qty, ok := byWeek[week]
		marker := quarterEnd(week)
		if !ok && marker == "" {
			continue
		}
		var cell any = ""
		if ok {
			cell = qty
		}
		t.AppendRow(table.Row{week, cell, bar(qty, peak), marker})
	}
	t.AppendFooter(table.Row{"Total", aggregate.Total(groups), "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(w)
}

// RecordHeader is the column order of RenderRecords.
var RecordHeader = table.Row{"Date", "Week#", "Size", "Thickness", "Type", "Reason", "Qty", "Vendor", "SO", "Dept."}

// RenderRecords prints up to limit records newest first, undated records last.
// limit <= 0 prints all of them.
func RenderRecords(w io.Writer, set model.RecordSet, limit int) {
	sorted := set.NewestFirst()

	t := newTable(w)
	t.AppendHeader(RecordHeader)
	shown := 0
	sorted.Each(func(_ int, r model.Record) {
		if limit > 0 && shown >= limit {
			return
		}
		t.AppendRow(RecordRow(r))
		shown++
	})
	t.AppendFooter(table.Row{fmt.Sprintf("%d of %d", shown, set.Len()), "", "", "", "", "", sorted.TotalQty()})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

// RecordRow formats one record in RecordHeader order.
func RecordRow(r model.Record) table.Row {
	date, week := "", ""
	if r.HasDate() {
		date = r.Date.Format("2006-01-02")
		week = strconv.Itoa(r.Derived.Week)
	}
	return table.Row{date, week, r.Size, r.Thickness.String(), r.Type, r.Reason, r.Qty, r.Vendor, r.SO, r.Dept}
}

// RenderFields prints name/value pairs, e.g. a shaped entry.
func RenderFields(w io.Writer, names, values []string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	for i, name := range names {
		var v string
		if i < len(values) {
			v = values[i]
		}
		t.AppendRow(table.Row{name, v})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	return t
}

// quarterEnd labels the quarter boundary weeks, e.g. "Q1 end".
func quarterEnd(week int) string {
	i := slices.Index(aggregate.QuarterMarkers, week)
	if i < 0 {
		return ""
	}
	return "Q" + strconv.Itoa(i+1) + " end"
}

func peakQty(groups []aggregate.Group) int {
	peak := 0
	for _, g := range groups {
		peak = max(peak, g.Qty)
	}
	return peak
}

func share(qty, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(qty)*100/float64(total))
}

func bar(qty, peak int) string {
	if peak <= 0 || qty <= 0 {
		return ""
	}
	n := qty * barWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
