package aggregate

import (
	"strings"

	"github.com/Veraticus/glassline/internal/model"
)

// InYear accepts dated records whose calendar year is year.
func InYear(year int) Filter {
	return func(r model.Record) bool {
		return r.HasDate() && r.Derived.Year == year
	}
}

// InQuarter accepts dated records in the given quarter, e.g. "2024Q3".
func InQuarter(quarter string) Filter {
	quarter = strings.ToUpper(strings.TrimSpace(quarter))
	return func(r model.Record) bool {
		return r.HasDate() && r.Derived.Quarter == quarter
	}
}

// ReasonIs accepts records whose reason matches after trimming and lowercasing.
func ReasonIs(reason string) Filter {
	want := model.NormalizeLabel(reason)
	return func(r model.Record) bool {
		return r.ReasonKey() == want
	}
}

// TypeIn accepts records whose type is one of types.
func TypeIn(types []string) Filter {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(r model.Record) bool {
		_, ok := allowed[r.Type]
		return ok
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
