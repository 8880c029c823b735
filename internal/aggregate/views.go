package aggregate

import (
	"sort"

	"github.com/Veraticus/glassline/internal/model"
)

// Weekly sums qty per ISO week for records dated in year, ascending by week.
func Weekly(set model.RecordSet, year int) []Group {
	return ByKey(set, KeyWeek, InYear(year))
}

// ByReason sums qty per normalized reason for records dated in year.
func ByReason(set model.RecordSet, year int) []Group {
	return ByKey(set, KeyReason, InYear(year))
}

// ByType sums qty per glass type for records dated in year, restricted to the
// top n types by record count.
func ByType(set model.RecordSet, year, n int) []Group {
	top := TopN(set, year, KeyType, n)
	return ByKey(set, KeyType, InYear(year), TypeIn(top))
}

// ByDept sums qty per department for records in quarter, e.g. "2024Q2".
func ByDept(set model.RecordSet, quarter string) []Group {
	return ByKey(set, KeyDept, InQuarter(quarter))
}

// Monthly sums qty per month across all dated records in chronological order.
func Monthly(set model.RecordSet) []Group {
	return ByKey(set, KeyMonthYear)
}

// Years lists the distinct calendar years present, ascending.
func Years(set model.RecordSet) []int {
	seen := make(map[int]struct{})
	set.Each(func(_ int, r model.Record) {
		if r.HasDate() {
			seen[r.Derived.Year] = struct{}{}
		}
	})

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LatestYear returns the most recent year present, or false for an undated set.
func LatestYear(set model.RecordSet) (int, bool) {
	years := Years(set)
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// Quarters lists the distinct quarters present in chronological order.
func Quarters(set model.RecordSet) []string {
	groups := ByKey(set, KeyQuarter)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}
