package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// dateLayouts are tried in order. Day-first short forms come before US forms because
// the sheets written by the entry form use DD-MM-YY.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-06",
	"02-01-2006",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// excelEpoch is day zero of the 1900 date system as used by spreadsheet serial numbers.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Accepted serial range, 1950-01-01 through 2100-12-31. Smaller numbers are
// years or quantities in the wrong column, not dates.
const (
	minSerial = 18264
	maxSerial = 73415
)

// ParseDate parses a date cell. It accepts time values, spreadsheet serial numbers and
// the text layouts seen in the persisted sheets. The time of day is discarded.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(d), true
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(*d), true
	case float64, float32, int, int64, int32:
		return fromSerial(cast.ToFloat64(d))
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	// Bare serial numbers arrive as text from CSV exports.
	if f, err := cast.ToFloat64E(s); err == nil {
		return fromSerial(f)
	}

	return time.Time{}, false
}

func fromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < minSerial || serial > maxSerial {
		return time.Time{}, false
	}
	days := int(math.Floor(serial))
	return excelEpoch.AddDate(0, 0, days), true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
