package source

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/Veraticus/glassline/internal/model"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet read when none is configured.
const DefaultSheet = "AllData"

// WorkbookSource reads an xlsx file. The first row of the sheet is the header.
type WorkbookSource struct {
	// Reader, when set, is read instead of Path (uploaded workbooks).
	Reader io.Reader
	Path   string
	// Sheet defaults to AllData, then to the first worksheet.
	Sheet string
}

// Name identifies the source in logs.
func (s *WorkbookSource) Name() string {
	if s.Path == "" {
		return "workbook"
	}
	return "workbook " + filepath.Base(s.Path)
}

// Load reads every row of the selected sheet. Cells are read raw so dates arrive
// as serial numbers rather than display text.
func (s *WorkbookSource) Load(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheet, err := pickSheet(f, s.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rowsToRecords(rows), nil
}

func (s *WorkbookSource) open() (*excelize.File, error) {
	if s.Reader != nil {
		f, err := excelize.OpenReader(s.Reader)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return f, nil
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.Path, err)
	}
	return f, nil
}

func pickSheet(f *excelize.File, want string) (string, error) {
	sheets := f.GetSheetList()
	if want != "" {
		if !slices.Contains(sheets, want) {
			return "", fmt.Errorf("worksheet %q not found", want)
		}
		return want, nil
	}
	if slices.Contains(sheets, DefaultSheet) {
		return DefaultSheet, nil
	}
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no worksheets")
	}
	return sheets[0], nil
}
