package report

import (
	"archive/zip"
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dated(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func rec(date *time.Time, typ, reason, dept string, qty int) model.Record {
	r := model.Record{
		Date:      date,
		Size:      "36x48",
		Thickness: model.ThicknessLabelOf("1/4"),
		Type:      typ,
		Reason:    reason,
		Dept:      dept,
		Vendor:    "Cardinal",
		SO:        "SO-1",
		Qty:       qty,
	}
	if date != nil {
		d := model.Derive(*date)
		r.Derived = &d
	}
	return r
}

func sampleSet() model.RecordSet {
	return model.NewRecordSet([]model.Record{
		rec(dated(2024, time.January, 1), "Clear", "Scratched", "Cutting", 2),
		rec(dated(2024, time.January, 2), "Clear", "scratched ", "Cutting", 3),
		rec(dated(2024, time.March, 25), "Low-E", "Broken", "Patio Doors", 7),
		rec(dated(2024, time.December, 23), "Tinted", "Broken", "Cutting", 10),
		rec(dated(2023, time.June, 6), "Clear", "Missing", "Shipping", 4),
		rec(nil, "Clear", "Broken", "Cutting", 1),
	})
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// chartParts returns the chart XML parts of an xlsx archive keyed by part name.
func chartParts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	parts := make(map[string]string)
	for _, file := range zr.File {
		if !strings.HasPrefix(file.Name, "xl/charts/chart") {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		parts[file.Name] = string(body)
	}
	return parts
}

func TestBuild(t *testing.T) {
	set := sampleSet()

	tests := []struct {
		name       string
		opts       Options
		wantYear   int
		wantWeeks  []int
		wantReason map[string]int
		wantTypes  []string
		wantDepts  map[string]int
	}{
		{
			name:       "defaults to latest year and all records",
			opts:       Options{},
			wantYear:   2024,
			wantWeeks:  []int{1, 13, 52},
			wantReason: map[string]int{"broken": 18, "scratched": 5, "missing": 4},
			wantTypes:  []string{"Clear", "Tinted", "Low-E"},
			wantDepts:  map[string]int{"Cutting": 16, "Patio Doors": 7, "Shipping": 4},
		},
		{
			name:       "scoped to year with quarter and top types",
			opts:       Options{Year: 2024, ScopeToYear: true, Quarter: "2024q1", TypeTopN: 1},
			wantYear:   2024,
			wantWeeks:  []int{1, 13, 52},
			wantReason: map[string]int{"broken": 17, "scratched": 5},
			wantTypes:  []string{"Clear"},
			wantDepts:  map[string]int{"Cutting": 5, "Patio Doors": 7},
		},
		{
			name:       "explicit earlier year",
			opts:       Options{Year: 2023},
			wantYear:   2023,
			wantWeeks:  []int{23},
			wantReason: map[string]int{"broken": 18, "scratched": 5, "missing": 4},
			wantTypes:  []string{"Clear", "Tinted", "Low-E"},
			wantDepts:  map[string]int{"Cutting": 16, "Patio Doors": 7, "Shipping": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggs := Build(set, tt.opts)

			assert.Equal(t, tt.wantYear, aggs.Year)

			weeks := make([]int, len(aggs.Weekly))
			for i, g := range aggs.Weekly {
				weeks[i] = g.Order
			}
			assert.Equal(t, tt.wantWeeks, weeks)

			reasons := make(map[string]int)
			for _, g := range aggs.Reason {
				reasons[g.Key] = g.Qty
			}
			assert.Equal(t, tt.wantReason, reasons)

			types := make([]string, len(aggs.Type))
			for i, g := range aggs.Type {
				types[i] = g.Key
			}
			assert.Equal(t, tt.wantTypes, types)

			depts := make(map[string]int)
			for _, g := range aggs.Dept {
				depts[g.Key] = g.Qty
			}
			assert.Equal(t, tt.wantDepts, depts)
		})
	}
}

func TestExport_Workbook(t *testing.T) {
	set := sampleSet()

	data, err := Export(set, Options{})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SheetAllData, SheetChartData, SheetCharts}, f.GetSheetList())

	rows, err := f.GetRows(SheetAllData, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, set.Len()+1)
	assert.Equal(t, AllDataHeader, rows[0])

	// The first data row reads back as the same date and derived columns.
	first := rows[1]
	date, ok := normalize.ParseDate(first[0])
	require.True(t, ok)
	assert.Equal(t, *set.At(0).Date, date)
	assert.Equal(t, "Scratched", first[4])
	assert.Equal(t, "2", first[5])
	assert.Equal(t, "1", first[9])
	assert.Equal(t, "2024Q1", first[12])
	assert.Equal(t, "202401", first[14])

	// The undated row keeps its columns but leaves date and derived cells blank.
	undated := rows[len(rows)-1]
	assert.Equal(t, "", undated[0])
	assert.Equal(t, "Broken", undated[4])
	assert.Len(t, undated, 9)
}

func TestExport_ChartDataMatchesAggregates(t *testing.T) {
	set := sampleSet()
	aggs := Build(set, Options{})

	data, err := Export(set, Options{})
	require.NoError(t, err)
	f := openWorkbook(t, data)

	cell := func(ref string) string {
		v, err := f.GetCellValue(SheetChartData, ref)
		require.NoError(t, err)
		return v
	}

	// Weekly table spans weeks 1..53 with gaps where no data exists.
	assert.Equal(t, "1", cell("A2"))
	assert.Equal(t, "53", cell("A54"))
	assert.Equal(t, "5", cell("B2"))
	assert.Equal(t, "", cell("B3"))
	assert.Equal(t, "7", cell("B14"))
	assert.Equal(t, "10", cell("B53"))

	// Quarter markers sit on weeks 13, 26, 39 and 52 at the weekly peak.
	for _, ref := range []string{"C14", "C27", "C40", "C53"} {
		assert.Equal(t, "10", cell(ref), ref)
	}
	assert.Equal(t, "", cell("C2"))

	for i, g := range aggs.Reason {
		row := i + 2
		name, _ := excelize.CoordinatesToCellName(colReason, row)
		qty, _ := excelize.CoordinatesToCellName(colReason+1, row)
		assert.Equal(t, g.Label, cell(name))
		assert.Equal(t, strconv.Itoa(g.Qty), cell(qty))
	}
	for i, g := range aggs.Dept {
		row := i + 2
		name, _ := excelize.CoordinatesToCellName(colDept, row)
		assert.Equal(t, g.Label, cell(name))
	}
}

func TestExport_FourCharts(t *testing.T) {
	data, err := Export(sampleSet(), Options{})
	require.NoError(t, err)

	parts := chartParts(t, data)
	require.Len(t, parts, 4)

	weekly := parts["xl/charts/chart1.xml"]
	assert.Contains(t, weekly, "lineChart")
	assert.Contains(t, weekly, "barChart")
	assert.Contains(t, weekly, "ChartData!$B$2:$B$54")
	assert.Contains(t, weekly, "ChartData!$C$2:$C$54")
	assert.Contains(t, weekly, "Weekly Rejections 2024")

	assert.Contains(t, parts["xl/charts/chart2.xml"], "ChartData!$E$2:$E$4")
	assert.Contains(t, parts["xl/charts/chart3.xml"], "ChartData!$H$2:$H$4")
	assert.Contains(t, parts["xl/charts/chart4.xml"], "doughnutChart")
}

func TestExport_EmptySet(t *testing.T) {
	data, err := Export(model.NewRecordSet(nil), Options{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SheetAllData, SheetChartData, SheetCharts}, f.GetSheetList())

	rows, err := f.GetRows(SheetAllData)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AllDataHeader, rows[0])

	assert.Empty(t, chartParts(t, data))
}

func TestExport_UndatedOnlySkipsWeekly(t *testing.T) {
	set := model.NewRecordSet([]model.Record{rec(nil, "Clear", "Broken", "Cutting", 3)})

	data, err := Export(set, Options{})
	require.NoError(t, err)

	// Reason, type and department still have data; the weekly chart does not.
	parts := chartParts(t, data)
	require.Len(t, parts, 3)
	for _, body := range parts {
		assert.NotContains(t, body, "lineChart")
	}
}

func TestExport_Deterministic(t *testing.T) {
	first, err := Export(sampleSet(), Options{})
	require.NoError(t, err)
	second, err := Export(sampleSet(), Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWrite_ToWriter(t *testing.T) {
	set := sampleSet()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, set, Build(set, Options{}), Options{}))

	exported, err := Export(set, Options{})
	require.NoError(t, err)
	assert.Equal(t, exported, buf.Bytes())
}

func TestRange(t *testing.T) {
	r := Range{Sheet: SheetChartData, Col: 5, FirstRow: 2, LastRow: 9}
	assert.Equal(t, "ChartData!$E$2:$E$9", r.Ref())
	assert.Equal(t, "ChartData!$E$1", r.Header())
	assert.Equal(t, 8, r.Rows())
}

func TestChartSpec_UnsupportedKind(t *testing.T) {
	_, err := ChartSpec{Kind: "radar"}.excelizeCharts()
	require.Error(t, err)
}
