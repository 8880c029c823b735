// Package report renders a rejection record set as an xlsx workbook with charts.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Veraticus/glassline/internal/aggregate"
	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/normalize"
	"github.com/xuri/excelize/v2"
)

// DefaultFilename is the default report output name.
const DefaultFilename = "Rejection_Report_With_Charts.xlsx"

// Worksheet names.
const (
	SheetAllData   = "AllData"
	SheetChartData = "ChartData"
	SheetCharts    = "Charts"
)

// ErrExport wraps every failure while producing the workbook.
var ErrExport = common.ErrExport

// AllDataHeader is the column order of the AllData sheet.
var AllDataHeader = []string{
	normalize.ColDate,
	normalize.ColSize,
	normalize.ColThickness,
	normalize.ColType,
	normalize.ColReason,
	normalize.ColQty,
	normalize.ColVendor,
	normalize.ColSO,
	normalize.ColDept,
	normalize.ColWeek,
	normalize.ColMonth,
	normalize.ColYear,
	normalize.ColQuarter,
	normalize.ColMonthYear,
	normalize.ColMonthYearSort,
}

const maxWeek = 53

// Options control which slices of the data the charts show.
type Options struct {
	// Year selects the weekly chart year. Zero means the latest year present.
	Year int
	// ScopeToYear restricts the reason chart to Year instead of all years.
	ScopeToYear bool
	// Quarter restricts the department chart, e.g. "2024Q2". Empty means all records.
	Quarter string
	// TypeTopN restricts the type chart to the n most frequent types in Year. Zero means all types.
	TypeTopN int
}

// Aggregates holds the tables behind the four charts.
type Aggregates struct {
	Year   int
	Weekly []aggregate.Group
	Reason []aggregate.Group
	Type   []aggregate.Group
	Dept   []aggregate.Group
}

// Build computes the chart tables for set.
func Build(set model.RecordSet, opts Options) Aggregates {
	year := opts.Year
	hasYear := year != 0
	if !hasYear {
		year, hasYear = aggregate.LatestYear(set)
	}

	aggs := Aggregates{Year: year}
	if hasYear {
		aggs.Weekly = aggregate.Weekly(set, year)
	}

	if !opts.ScopeToYear {
		aggs.Reason = aggregate.ByKey(set, aggregate.KeyReason)
	} else if hasYear {
		aggs.Reason = aggregate.ByReason(set, year)
	}

	if opts.TypeTopN <= 0 {
		aggs.Type = aggregate.ByKey(set, aggregate.KeyType)
	} else if hasYear {
		aggs.Type = aggregate.ByType(set, year, opts.TypeTopN)
	}

	if opts.Quarter != "" {
		aggs.Dept = aggregate.ByDept(set, opts.Quarter)
	} else {
		aggs.Dept = aggregate.ByKey(set, aggregate.KeyDept)
	}

	return aggs
}

// Export builds the aggregates for set and returns the complete workbook.
func Export(set model.RecordSet, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, set, Build(set, opts), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders set and aggs as a workbook into w. Nothing is written to w on failure.
func Write(w io.Writer, set model.RecordSet, aggs Aggregates, opts Options) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetAllData); err != nil {
		return fmt.Errorf("%w: rename sheet: %w", ErrExport, err)
	}
	if err := writeAllData(f, set); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	if _, err := f.NewSheet(SheetChartData); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrExport, SheetChartData, err)
	}
	specs, err := writeChartData(f, aggs, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	if _, err := f.NewSheet(SheetCharts); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrExport, SheetCharts, err)
	}
	for _, spec := range specs {
		charts, err := spec.excelizeCharts()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
		if err := f.AddChart(SheetCharts, spec.Anchor, charts[0], charts[1:]...); err != nil {
			return fmt.Errorf("%w: add chart %q: %w", ErrExport, spec.Title, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Rejection Report",
		Subject: "Glass cutting line rejections",
		Creator: "glassline",
	}); err != nil {
		return fmt.Errorf("%w: set properties: %w", ErrExport, err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("%w: serialize workbook: %w", ErrExport, err)
	}
	data, err := canonicalize(buf.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write workbook: %w", ErrExport, err)
	}
	return nil
}

func writeAllData(f *excelize.File, set model.RecordSet) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dateFormat := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetAllData)
	if err != nil {
		return fmt.Errorf("open %s: %w", SheetAllData, err)
	}
	if err := sw.SetColWidth(1, len(AllDataHeader), 14); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	header := make([]any, len(AllDataHeader))
	for i, h := range AllDataHeader {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var rowErr error
	set.Each(func(i int, r model.Record) {
		if rowErr != nil {
			return
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, allDataRow(r, dateStyle)); err != nil {
			rowErr = fmt.Errorf("write row %d: %w", i+2, err)
		}
	})
	if rowErr != nil {
		return rowErr
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", SheetAllData, err)
	}
	return nil
}

func allDataRow(r model.Record, dateStyle int) []any {
	row := make([]any, len(AllDataHeader))
	if r.Date != nil {
		row[0] = excelize.Cell{StyleID: dateStyle, Value: *r.Date}
	}
	row[1] = r.Size
	row[2] = r.Thickness.Value()
	row[3] = r.Type
	row[4] = r.Reason
	row[5] = r.Qty
	row[6] = r.Vendor
	row[7] = r.SO
	row[8] = r.Dept
	if d := r.Derived; d != nil {
		row[9] = d.Week
		row[10] = d.Month
		row[11] = d.Year
		row[12] = d.Quarter
		row[13] = d.MonthYear
		row[14] = d.MonthYearSort
	}
	return row
}

// ChartData column positions. The four tables sit side by side, one blank column apart.
const (
	colWeek    = 1
	colWeekQty = 2
	colMarker  = 3
	colReason  = 5
	colType    = 8
	colDept    = 11
)

// writeChartData writes the summary tables and returns the chart specs that
// reference them. Tables that are empty produce no spec.
func writeChartData(f *excelize.File, aggs Aggregates, opts Options) ([]ChartSpec, error) {
	header := []any{
		normalize.ColWeek, normalize.ColQty, normalize.ColQuarter, nil,
		normalize.ColReason, normalize.ColQty, nil,
		normalize.ColType, normalize.ColQty, nil,
		normalize.ColDept, normalize.ColQty,
	}
	if err := f.SetSheetRow(SheetChartData, "A1", &header); err != nil {
		return nil, fmt.Errorf("chart data header: %w", err)
	}
	if err := f.SetColWidth(SheetChartData, "A", "L", 12); err != nil {
		return nil, fmt.Errorf("chart data width: %w", err)
	}

	specs := make([]ChartSpec, 0, 4)

	if len(aggs.Weekly) > 0 {
		spec, err := writeWeekly(f, aggs)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	reasonTitle := "Rejections by Reason"
	if opts.ScopeToYear && aggs.Year != 0 {
		reasonTitle = fmt.Sprintf("Rejections by Reason %d", aggs.Year)
	}
	typeTitle := "Rejections by Glass Type"
	if opts.TypeTopN > 0 && aggs.Year != 0 {
		typeTitle = fmt.Sprintf("Top %d Glass Types %d", opts.TypeTopN, aggs.Year)
	}
	deptTitle := "Rejections by Department"
	if opts.Quarter != "" {
		deptTitle = fmt.Sprintf("Rejections by Department %s", opts.Quarter)
	}

	categorical := []struct {
		groups []aggregate.Group
		col    int
		kind   ChartKind
		title  string
		xTitle string
		anchor string
	}{
		{aggs.Reason, colReason, ChartColumn, reasonTitle, "Reason", "L2"},
		{aggs.Type, colType, ChartColumn, typeTitle, "Glass Type", "B20"},
		{aggs.Dept, colDept, ChartDoughnut, deptTitle, "", "L20"},
	}
	for _, c := range categorical {
		if len(c.groups) == 0 {
			continue
		}
		cats, vals, err := writeTable(f, c.col, c.groups)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ChartSpec{
			Kind:       c.kind,
			Title:      c.title,
			XAxisTitle: c.xTitle,
			YAxisTitle: "Quantity",
			Categories: cats,
			Values:     vals,
			Anchor:     c.anchor,
		})
	}

	return specs, nil
}

// writeWeekly lays out weeks 1..53 so the line keeps a fixed axis. Weeks without
// data stay blank and are drawn as gaps.
func writeWeekly(f *excelize.File, aggs Aggregates) (ChartSpec, error) {
	byWeek := make(map[int]int, len(aggs.Weekly))
	peak := 1
	for _, g := range aggs.Weekly {
		byWeek[g.Order] = g.Qty
		if g.Qty > peak {
			peak = g.Qty
		}
	}
	markers := make(map[int]bool, len(aggregate.QuarterMarkers))
	for _, w := range aggregate.QuarterMarkers {
		markers[w] = true
	}

	for week := 1; week <= maxWeek; week++ {
		row := week + 1
		if err := setInt(f, colWeek, row, week); err != nil {
			return ChartSpec{}, err
		}
		if qty, ok := byWeek[week]; ok {
			if err := setInt(f, colWeekQty, row, qty); err != nil {
				return ChartSpec{}, err
			}
		}
		if markers[week] {
			if err := setInt(f, colMarker, row, peak); err != nil {
				return ChartSpec{}, err
			}
		}
	}

	last := maxWeek + 1
	marker := Range{Sheet: SheetChartData, Col: colMarker, FirstRow: 2, LastRow: last}
	return ChartSpec{
		Kind:       ChartLine,
		Title:      fmt.Sprintf("Weekly Rejections %d", aggs.Year),
		XAxisTitle: "Week Number",
		YAxisTitle: "Quantity",
		Categories: Range{Sheet: SheetChartData, Col: colWeek, FirstRow: 2, LastRow: last},
		Values:     Range{Sheet: SheetChartData, Col: colWeekQty, FirstRow: 2, LastRow: last},
		Markers:    &marker,
		Anchor:     "B2",
	}, nil
}

func writeTable(f *excelize.File, col int, groups []aggregate.Group) (Range, Range, error) {
	for i, g := range groups {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(col, row)
		if err := f.SetCellStr(SheetChartData, cell, g.Label); err != nil {
			return Range{}, Range{}, fmt.Errorf("chart data %s: %w", cell, err)
		}
		if err := setInt(f, col+1, row, g.Qty); err != nil {
			return Range{}, Range{}, err
		}
	}
	last := len(groups) + 1
	return Range{Sheet: SheetChartData, Col: col, FirstRow: 2, LastRow: last},
		Range{Sheet: SheetChartData, Col: col + 1, FirstRow: 2, LastRow: last},
		nil
}

func setInt(f *excelize.File, col, row, v int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("chart data cell: %w", err)
	}
	if err := f.SetCellInt(SheetChartData, cell, v); err != nil {
		return fmt.Errorf("chart data %s: %w", cell, err)
	}
	return nil
}
