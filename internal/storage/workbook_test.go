package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/glassline/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWorkbookAppender_CreatesWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LiveData.xlsx")
	w := NewWorkbookAppender(path)
	ctx := context.Background()

	require.NoError(t, w.Append(ctx, shapeRow(t, entry.LiveData, 5, "Scratched", 2)))
	require.NoError(t, w.Append(ctx, shapeRow(t, entry.LiveData, 6, "Broken", 3)))

	rows := readSheet(t, path, DefaultWorkbookSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, entry.LiveData.Header(), rows[0])
	assert.Equal(t, "2024-03-05", rows[1][0])
	assert.Equal(t, "Scratched", rows[1][4])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "2024-03-06", rows[2][0])
}

func TestWorkbookAppender_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet("Rejects")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Rejects", "A1", &[]any{"Date", "Qty"}))
	require.NoError(t, f.SetSheetRow("Rejects", "A2", &[]any{"2024-01-01", 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	w := &WorkbookAppender{Path: path, Sheet: "Rejects"}
	require.NoError(t, w.Append(context.Background(), shapeRow(t, entry.LiveData, 5, "Scratched", 2)))

	rows := readSheet(t, path, "Rejects")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Qty"}, rows[0])
	assert.Equal(t, "2024-03-05", rows[2][0])

	summary := readSheet(t, path, "Summary")
	assert.Empty(t, summary)
}

func TestWorkbookAppender_AddsMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	w := NewWorkbookAppender(path)
	require.NoError(t, w.Append(context.Background(), shapeRow(t, entry.SheetsV1, 5, "Scratched", 2)))

	rows := readSheet(t, path, DefaultWorkbookSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "Week#", rows[0][0])
	assert.Equal(t, "10", rows[1][0])
}

func TestWorkbookAppender_Errors(t *testing.T) {
	ctx := context.Background()
	row := shapeRow(t, entry.LiveData, 5, "Scratched", 2)

	assert.ErrorIs(t, (&WorkbookAppender{}).Append(ctx, row), ErrEmptyString)

	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a workbook"), 0o600))
	assert.Error(t, NewWorkbookAppender(bad).Append(ctx, row))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, NewWorkbookAppender(bad).Append(canceled, row), context.Canceled)
}
