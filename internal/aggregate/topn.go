package aggregate

import (
	"sort"

	"github.com/Veraticus/glassline/internal/model"
)

// DefaultTopN caps the number of series on the glass type chart.
const DefaultTopN = 5

// TopN returns the n most frequent values of column among records dated in year.
// Frequency is the number of records, not summed qty. Equal counts keep the order in
// which the values first appear in the record set. n <= 0 means DefaultTopN.
func TopN(set model.RecordSet, year int, column Key, n int) []string {
	if n <= 0 {
		n = DefaultTopN
	}

	type counted struct {
		value string
		count int
		first int
	}

	index := make(map[string]int)
	values := make([]counted, 0)
	inYear := InYear(year)

	set.Each(func(i int, r model.Record) {
		if !inYear(r) {
			return
		}
		v, _, _, ok := keyOf(r, column)
		if !ok {
			return
		}
		j, seen := index[v]
		if !seen {
			j = len(values)
			index[v] = j
			values = append(values, counted{value: v, first: i})
		}
		values[j].count++
	})

	sort.SliceStable(values, func(i, j int) bool {
		if values[i].count != values[j].count {
			return values[i].count > values[j].count
		}
		return values[i].first < values[j].first
	})

	if len(values) > n {
		values = values[:n]
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.value
	}
	return out
}
