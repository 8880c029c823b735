// Package entry validates manually entered rejection records and shapes them into
// rows for a persisted sheet layout.
package entry

import (
	"fmt"
	"sort"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/model"
)

// Column identifies one field of a persisted row.
type Column string

// Columns that persisted schemas are built from.
const (
	ColWeek          Column = "Week#"
	ColDate          Column = "Date"
	ColMonth         Column = "Month"
	ColYear          Column = "Year"
	ColSize          Column = "Size"
	ColThickness     Column = "Thickness"
	ColThicknessMM   Column = "Thickness (mm)"
	ColType          Column = "Type"
	ColReason        Column = "Reason"
	ColQty           Column = "Qty"
	ColVendor        Column = "Vendor"
	ColSO            Column = "SO"
	ColDept          Column = "Dept."
	ColMonthYear     Column = "MonthYear"
	ColMonthYearSort Column = "MonthYearSort"
)

// MonthStyle selects how the month column is written.
type MonthStyle int

// Month styles.
const (
	MonthName MonthStyle = iota
	MonthNumber
)

// Schema describes one persisted row layout: column order, date format and cell typing.
type Schema struct {
	Name       string
	DateLayout string
	Columns    []Column
	// NumbersAsText writes week, year and qty as text so the spreadsheet does not
	// reinterpret them (a week number of 3-4 turning into a date, for example).
	NumbersAsText bool
	Months        MonthStyle
	Thickness     model.ThicknessKind
}

// Header returns the column titles in order.
func (s Schema) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = string(c)
	}
	return out
}

var sheetColumns = []Column{
	ColWeek, ColDate, ColMonth, ColYear, ColSize, ColThickness,
	ColType, ColReason, ColQty, ColVendor, ColSO, ColDept,
}

// Built-in schemas.
var (
	// SheetsV1 is the shared "AllData" worksheet with day-first short dates and text numbers.
	SheetsV1 = Schema{
		Name:          "sheets-v1",
		Columns:       sheetColumns,
		DateLayout:    "02-01-06",
		NumbersAsText: true,
		Months:        MonthName,
		Thickness:     model.ThicknessLabel,
	}

	// SheetsV2 keeps the same order with ISO dates and numeric cells.
	SheetsV2 = Schema{
		Name:       "sheets-v2",
		Columns:    sheetColumns,
		DateLayout: "2006-01-02",
		Months:     MonthName,
		Thickness:  model.ThicknessLabel,
	}

	// LiveData is the local workbook layout with millimetre thickness and derived columns last.
	LiveData = Schema{
		Name: "livedata",
		Columns: []Column{
			ColDate, ColSize, ColThicknessMM, ColType, ColReason, ColQty, ColVendor, ColSO, ColDept,
			ColWeek, ColMonth, ColYear, ColMonthYear, ColMonthYearSort,
		},
		DateLayout: "2006-01-02",
		Months:     MonthNumber,
		Thickness:  model.ThicknessMillimeters,
	}
)

var schemas = map[string]Schema{
	SheetsV1.Name: SheetsV1,
	SheetsV2.Name: SheetsV2,
	LiveData.Name: LiveData,
}

// DefaultSchema is used when configuration does not name one.
const DefaultSchema = "sheets-v1"

// LookupSchema returns the built-in schema with the given name.
func LookupSchema(name string) (Schema, error) {
	if name == "" {
		name = DefaultSchema
	}
	s, ok := schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: unknown entry schema %q (known: %v)", common.ErrInvalidConfig, name, SchemaNames())
	}
	return s, nil
}

// SchemaNames lists the built-in schema names, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
