// Package aggregate computes sum-of-quantity views over a normalized record set.
package aggregate

import (
	"sort"
	"strconv"

	"github.com/Veraticus/glassline/internal/model"
)

// Key selects the grouping dimension.
type Key string

// Supported grouping keys.
const (
	KeyWeek      Key = "week"
	KeyReason    Key = "reason"
	KeyType      Key = "type"
	KeyDept      Key = "dept"
	KeyVendor    Key = "vendor"
	KeyMonthYear Key = "monthYear"
	KeyQuarter   Key = "quarter"
	KeyYear      Key = "year"
)

// IsTemporal reports whether the key is derived from the record date.
func (k Key) IsTemporal() bool {
	switch k {
	case KeyWeek, KeyMonthYear, KeyQuarter, KeyYear:
		return true
	default:
		return false
	}
}

// QuarterMarkers are the weeks drawn as quarter boundaries on the weekly chart,
// whether or not those weeks have data.
var QuarterMarkers = []int{13, 26, 39, 52}

// Group is one row of an aggregate table.
type Group struct {
	Key   string // comparison key, e.g. "scratched"
	Label string // display text, e.g. "Scratched"
	Order int    // numeric sort key for temporal groups (week number, 202403, ...)
	Qty   int
	Count int
}

// Filter decides whether a record takes part in an aggregation.
type Filter func(model.Record) bool

// ByKey sums qty per distinct value of key over the records accepted by every filter.
// Groups without records are omitted. Temporal keys skip records without a date.
// Temporal groups are ordered chronologically; categorical groups by descending qty then key.
func ByKey(set model.RecordSet, key Key, filters ...Filter) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	set.Each(func(_ int, r model.Record) {
		if !accept(r, filters) {
			return
		}
		k, label, order, ok := keyOf(r, key)
		if !ok {
			return
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k, Label: label, Order: order})
		}
		groups[i].Qty += r.Qty
		groups[i].Count++
	})

	if key.IsTemporal() {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Order < groups[j].Order
		})
	} else {
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Qty != groups[j].Qty {
				return groups[i].Qty > groups[j].Qty
			}
			return groups[i].Key < groups[j].Key
		})
	}

	return groups
}

// Total sums the qty of all groups.
func Total(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Qty
	}
	return total
}

func accept(r model.Record, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f(r) {
			return false
		}
	}
	return true
}

func keyOf(r model.Record, key Key) (k, label string, order int, ok bool) {
	if key.IsTemporal() && !r.HasDate() {
		return "", "", 0, false
	}

	switch key {
	case KeyWeek:
		w := strconv.Itoa(r.Derived.Week)
		return w, w, r.Derived.Week, true
	case KeyMonthYear:
		return r.Derived.MonthYear, r.Derived.MonthYear, r.Derived.MonthYearSort, true
	case KeyQuarter:
		return r.Derived.Quarter, r.Derived.Quarter, r.Derived.Year*10 + (r.Derived.Month-1)/3 + 1, true
	case KeyYear:
		y := strconv.Itoa(r.Derived.Year)
		return y, y, r.Derived.Year, true
	case KeyReason:
		return r.ReasonKey(), trimmed(r.Reason), 0, true
	case KeyType:
		return r.Type, r.Type, 0, true
	case KeyDept:
		return r.Dept, r.Dept, 0, true
	case KeyVendor:
		return r.Vendor, r.Vendor, 0, true
	default:
		return "", "", 0, false
	}
}
