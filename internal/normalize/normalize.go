// Package normalize turns loosely-typed source rows into typed rejection records.
package normalize

import (
	"strings"

	"github.com/Veraticus/glassline/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Source column names as they appear in the persisted sheets.
const (
	ColDate          = "Date"
	ColSize          = "Size"
	ColThickness     = "Thickness"
	ColThicknessMM   = "Thickness (mm)"
	ColType          = "Type"
	ColReason        = "Reason"
	ColQty           = "Qty"
	ColVendor        = "Vendor"
	ColSO            = "SO"
	ColDept          = "Dept."
	ColWeek          = "Week#"
	ColMonth         = "Month"
	ColYear          = "Year"
	ColQuarter       = "Quarter"
	ColMonthYear     = "MonthYear"
	ColMonthYearSort = "MonthYearSort"
)

// Records normalizes every raw row. No row is dropped and the call never fails.
func Records(raw []model.RawRecord) model.RecordSet {
	records := make([]model.Record, 0, len(raw))
	for _, row := range raw {
		records = append(records, Record(row))
	}
	return model.NewRecordSet(records)
}

// Record normalizes one raw row. Unparseable dates leave Date and Derived nil.
func Record(raw model.RawRecord) model.Record {
	lookup := newLookup(raw)

	rec := model.Record{
		Size:   toText(lookup.get(ColSize)),
		Type:   toText(lookup.get(ColType)),
		Reason: toText(lookup.get(ColReason)),
		Qty:    toQty(lookup.get(ColQty)),
		Vendor: toText(lookup.get(ColVendor)),
		SO:     toText(lookup.get(ColSO)),
		Dept:   toText(lookup.get(ColDept)),
	}

	if v, ok := lookup.lookup(ColThicknessMM); ok {
		rec.Thickness = toMillimeters(v)
	} else {
		rec.Thickness = model.ParseThickness(toText(lookup.get(ColThickness)))
	}

	if date, ok := ParseDate(lookup.get(ColDate)); ok {
		derived := model.Derive(date)
		rec.Date = &date
		rec.Derived = &derived
	}

	return rec
}

// Raw converts a normalized record back to a raw row carrying every normalized column.
// Normalizing the result again yields identical records.
func Raw(rec model.Record) model.RawRecord {
	raw := model.RawRecord{
		ColSize:   rec.Size,
		ColType:   rec.Type,
		ColReason: rec.Reason,
		ColQty:    rec.Qty,
		ColVendor: rec.Vendor,
		ColSO:     rec.SO,
		ColDept:   rec.Dept,
	}

	switch rec.Thickness.Kind {
	case model.ThicknessMillimeters:
		raw[ColThicknessMM] = rec.Thickness.MM.String()
	default:
		raw[ColThickness] = rec.Thickness.String()
	}

	if rec.Date != nil {
		raw[ColDate] = *rec.Date
	}
	if rec.Derived != nil {
		raw[ColWeek] = rec.Derived.Week
		raw[ColMonth] = rec.Derived.Month
		raw[ColYear] = rec.Derived.Year
		raw[ColQuarter] = rec.Derived.Quarter
		raw[ColMonthYear] = rec.Derived.MonthYear
		raw[ColMonthYearSort] = rec.Derived.MonthYearSort
	}

	return raw
}

// RawSet converts a whole record set back to raw rows.
func RawSet(set model.RecordSet) []model.RawRecord {
	out := make([]model.RawRecord, 0, set.Len())
	set.Each(func(_ int, r model.Record) {
		out = append(out, Raw(r))
	})
	return out
}

// toText coerces any cell to trimmed text; nil becomes "".
func toText(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// toQty coerces a qty cell. Values that are not numbers become 0 rather than failing the row.
func toQty(v any) int {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if f, err := cast.ToFloat64E(s); err == nil {
			return int(f)
		}
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

func toMillimeters(v any) model.Thickness {
	switch n := v.(type) {
	case float64:
		return model.Millimeters(decimal.NewFromFloat(n))
	case float32:
		return model.Millimeters(decimal.NewFromFloat32(n))
	case int, int64, int32:
		return model.Millimeters(decimal.NewFromInt(cast.ToInt64(n)))
	}
	return model.ParseThickness(toText(v))
}

// lookup resolves headers ignoring case, surrounding spaces and a trailing dot,
// so "Dept.", "dept" and " DEPT " address the same column.
type lookup struct {
	values map[string]any
}

func newLookup(raw model.RawRecord) lookup {
	values := make(map[string]any, len(raw))
	for k, v := range raw {
		values[headerKey(k)] = v
	}
	return lookup{values: values}
}

func (l lookup) lookup(col string) (any, bool) {
	v, ok := l.values[headerKey(col)]
	return v, ok
}

func (l lookup) get(col string) any {
	return l.values[headerKey(col)]
}

func headerKey(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}
