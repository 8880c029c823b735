package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/glassline/internal/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource reads a comma separated export with a header row.
type CSVSource struct {
	// Reader, when set, is read instead of Path (uploaded files).
	Reader io.Reader
	Path   string
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	if s.Path == "" {
		return "csv"
	}
	return "csv " + filepath.Base(s.Path)
}

// Load reads the whole file. A UTF-8 byte order mark, as written by spreadsheet
// exports, is stripped before parsing.
func (s *CSVSource) Load(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := s.Reader
	if r == nil {
		file, err := os.Open(s.Path)
		if err != nil {
			return nil, fmt.Errorf("open csv %s: %w", s.Path, err)
		}
		defer func() {
			_ = file.Close()
		}()
		r = file
	}

	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rowsToRecords(rows), nil
}
