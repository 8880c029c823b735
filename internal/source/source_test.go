package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/normalize"
	"github.com/Veraticus/glassline/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: KindWorkbook},
		{in: "workbook", want: KindWorkbook},
		{in: " CSV ", want: KindCSV},
		{in: "sheets", want: KindSheets},
		{in: "sqlite", want: KindSQLite},
		{in: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	src, err := Open(KindCSV, "/tmp/rejections.csv")
	require.NoError(t, err)
	assert.Equal(t, "csv rejections.csv", src.Name())

	src, err = Open(KindWorkbook, "LiveData.xlsx")
	require.NoError(t, err)
	assert.IsType(t, &WorkbookSource{}, src)

	_, err = Open(KindSheets, "sheet-id")
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))

	_, err = Open(KindCSV, "")
	assert.True(t, errors.Is(err, common.ErrMissingConfig))
}

func TestCSVSource_Load(t *testing.T) {
	data := "\ufeffDate,Size,Thickness,Type,Reason,Qty,Vendor,SO,Dept.\n" +
		"05-03-24,36x48,1/4,Clear,Scratched,2,Cardinal,SO-1,Cutting\n" +
		",,,,,,,,\n" +
		"2024-03-06,24x30,,Low-E,\"Broken, edge\",1,,,Patio Doors\n"

	src := &CSVSource{Reader: strings.NewReader(data)}
	raw, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 2)

	assert.Equal(t, "05-03-24", raw[0]["Date"])
	assert.Equal(t, "Broken, edge", raw[1]["Reason"])

	set := normalize.Records(raw)
	first := set.At(0)
	require.True(t, first.HasDate())
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), *first.Date)
	assert.Equal(t, 2, first.Qty)
	assert.Equal(t, "Cutting", first.Dept)
	assert.Equal(t, "Patio Doors", set.At(1).Dept)
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := &CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}
	_, err := src.Load(context.Background())
	require.Error(t, err)
}

func TestWorkbookSource_SheetSelection(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet("Damage")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Damage", "A1", &[]any{"Date", "Reason", "Qty"}))
	require.NoError(t, f.SetSheetRow("Damage", "A2", &[]any{"2024-01-08", "Chipped", 4}))
	require.NoError(t, f.SetSheetRow("Summary", "A1", &[]any{"Total"}))
	path := filepath.Join(dir, "damage.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tests := []struct {
		name    string
		sheet   string
		wantLen int
		wantErr bool
	}{
		{name: "named sheet", sheet: "Damage", wantLen: 1},
		{name: "first sheet fallback", sheet: "", wantLen: 0},
		{name: "unknown sheet", sheet: "Nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &WorkbookSource{Path: path, Sheet: tt.sheet}
			raw, err := src.Load(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raw, tt.wantLen)
		})
	}
}

func TestWorkbookSource_ReadsExportedReport(t *testing.T) {
	date := time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)
	derived := model.Derive(date)
	original := model.NewRecordSet([]model.Record{
		{
			Date:      &date,
			Derived:   &derived,
			Size:      "36x48",
			Thickness: model.ThicknessLabelOf("1/4"),
			Type:      "Clear",
			Reason:    "Scratched",
			Vendor:    "Cardinal",
			SO:        "SO-77",
			Dept:      "Cutting",
			Qty:       3,
		},
		{Type: "Low-E", Reason: "Broken", Dept: "Shipping", Qty: 1},
	})

	data, err := report.Export(original, report.Options{})
	require.NoError(t, err)

	src := &WorkbookSource{Reader: bytes.NewReader(data)}
	got, err := LoadRecords(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, original.Records(), got.Records())
}

func TestWorkbookSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&WorkbookSource{Path: "unused.xlsx"}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRowsToRecords(t *testing.T) {
	rows := [][]string{
		{"Date", "", "Qty "},
		{"2024-01-01", "ignored", "3"},
		{"2024-01-02"},
		{"", "", ""},
	}

	got := rowsToRecords(rows)
	require.Len(t, got, 2)
	assert.Equal(t, model.RawRecord{"Date": "2024-01-01", "Qty": "3"}, got[0])
	assert.Equal(t, model.RawRecord{"Date": "2024-01-02", "Qty": ""}, got[1])

	assert.Nil(t, rowsToRecords(nil))
}

func TestLoadRecords_Error(t *testing.T) {
	src := &CSVSource{Path: filepath.Join(os.TempDir(), "does-not-exist", "x.csv")}
	_, err := LoadRecords(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load csv x.csv")
}
