// Package source loads raw rejection rows from the places they are kept.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/normalize"
)

// Source yields raw rows with header-keyed cells.
type Source interface {
	Load(ctx context.Context) ([]model.RawRecord, error)
	Name() string
}

// Kind names a configured source type.
type Kind string

// Supported source kinds.
const (
	KindWorkbook Kind = "workbook"
	KindCSV      Kind = "csv"
	KindSheets   Kind = "sheets"
	KindSQLite   Kind = "sqlite"
)

// ParseKind validates a configured source kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindWorkbook, KindCSV, KindSheets, KindSQLite:
		return k, nil
	case "":
		return KindWorkbook, nil
	default:
		return "", fmt.Errorf("%w: unknown source kind %q", common.ErrInvalidConfig, s)
	}
}

// Open returns the file-backed source for kind at location. Sheets and SQLite
// sources need their own clients and are built by their packages.
func Open(kind Kind, location string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: %s source needs a path", common.ErrMissingConfig, kind)
	}
	switch kind {
	case KindWorkbook:
		return &WorkbookSource{Path: location}, nil
	case KindCSV:
		return &CSVSource{Path: location}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a file source", common.ErrInvalidConfig, kind)
	}
}

// LoadRecords loads src and normalizes every row.
func LoadRecords(ctx context.Context, src Source) (model.RecordSet, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	set := normalize.Records(raw)
	slog.Debug("Loaded rejection records", "source", src.Name(), "rows", set.Len())
	return set, nil
}

// rowsToRecords keys each data row by the header row. Blank header cells are
// dropped and rows without any value are skipped.
func rowsToRecords(rows [][]string) []model.RawRecord {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(model.RawRecord, len(header))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			var v string
			if i < len(row) {
				v = row[i]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			rec[name] = v
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records
}
