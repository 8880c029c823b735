package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/Veraticus/glassline/internal/entry"
	"github.com/xuri/excelize/v2"
)

// DefaultWorkbookSheet is the worksheet LiveData rows are appended to.
const DefaultWorkbookSheet = "AllData"

// WorkbookAppender appends rows to a local .xlsx file, creating it with a header
// row on first use.
type WorkbookAppender struct {
	Path  string
	Sheet string
	mu    sync.Mutex
}

// NewWorkbookAppender creates an appender for path.
func NewWorkbookAppender(path string) *WorkbookAppender {
	return &WorkbookAppender{Path: path, Sheet: DefaultWorkbookSheet}
}

// Append writes row below the last used row of the sheet and saves the file.
func (w *WorkbookAppender) Append(ctx context.Context, row entry.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateString(w.Path, "path"); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := w.Sheet
	if sheet == "" {
		sheet = DefaultWorkbookSheet
	}

	f, err := openOrCreate(w.Path, sheet)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	next := len(rows) + 1

	if len(rows) == 0 {
		if err := setRow(f, sheet, 1, headerCells(row.Schema)); err != nil {
			return err
		}
		next = 2
	}

	if err := setRow(f, sheet, next, row.Values); err != nil {
		return err
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.Path, err)
	}
	return nil
}

func openOrCreate(path, sheet string) (*excelize.File, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
		return f, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	return f, nil
}

func headerCells(schema entry.Schema) []any {
	header := schema.Header()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
