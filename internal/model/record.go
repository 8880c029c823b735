// Package model contains the core domain types for rejection reporting.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RawRecord is one loosely-typed source row keyed by its header text.
type RawRecord map[string]any

// Record represents one rejected-glass event after normalization.
type Record struct {
	Date      *time.Time
	Derived   *Derived // nil iff Date is nil
	Thickness Thickness
	Size      string
	Type      string
	Reason    string // original text, see ReasonKey for comparisons
	Vendor    string
	SO        string
	Dept      string
	Qty       int
}

// Derived holds the temporal fields computed from a record's date.
type Derived struct {
	Quarter       string // e.g. "2024Q1"
	MonthYear     string // e.g. "2024-03"
	Year          int
	Month         int
	Week          int // ISO week, 1..53
	MonthYearSort int // e.g. 202403
}

// Derive computes the temporal fields for a date.
func Derive(date time.Time) Derived {
	_, week := date.ISOWeek()
	month := int(date.Month())

	return Derived{
		Year:          date.Year(),
		Month:         month,
		Quarter:       fmt.Sprintf("%dQ%d", date.Year(), (month-1)/3+1),
		Week:          week,
		MonthYear:     fmt.Sprintf("%d-%02d", date.Year(), month),
		MonthYearSort: date.Year()*100 + month,
	}
}

// HasDate reports whether the record carries a parseable date.
func (r Record) HasDate() bool {
	return r.Date != nil && r.Derived != nil
}

// ReasonKey returns the reason trimmed and lowercased for equality filtering.
func (r Record) ReasonKey() string {
	return NormalizeLabel(r.Reason)
}

// NormalizeLabel trims and lowercases a categorical label.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RecordSet is an ordered, read-only collection of normalized records.
// Views receive it by value and never modify the records it holds.
type RecordSet struct {
	records []Record
}

// NewRecordSet wraps records; the slice is copied so later changes by the caller are not observed.
func NewRecordSet(records []Record) RecordSet {
	cp := make([]Record, len(records))
	copy(cp, records)
	return RecordSet{records: cp}
}

// Len returns the number of records, dated or not.
func (s RecordSet) Len() int {
	return len(s.records)
}

// At returns the record at position i.
func (s RecordSet) At(i int) Record {
	return s.records[i]
}

// Each calls fn for every record in order.
func (s RecordSet) Each(fn func(i int, r Record)) {
	for i, r := range s.records {
		fn(i, r)
	}
}

// Records returns a copy of the underlying records.
func (s RecordSet) Records() []Record {
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}

// Filter returns the subset of records for which keep returns true.
func (s RecordSet) Filter(keep func(Record) bool) RecordSet {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return RecordSet{records: out}
}

// TotalQty sums qty over every record.
func (s RecordSet) TotalQty() int {
	total := 0
	for _, r := range s.records {
		total += r.Qty
	}
	return total
}

// NewestFirst returns the records ordered by date descending. Undated records
// follow every dated one; ties keep their original order.
func (s RecordSet) NewestFirst() RecordSet {
	out := s.Records()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date == nil || b.Date == nil {
			return a.Date != nil && b.Date == nil
		}
		return a.Date.After(*b.Date)
	})
	return RecordSet{records: out}
}
