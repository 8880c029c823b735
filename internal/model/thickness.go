package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ThicknessKind tells which representation a Thickness carries.
type ThicknessKind int

// Thickness representations found in persisted schemas.
const (
	ThicknessNone ThicknessKind = iota
	ThicknessMillimeters
	ThicknessLabel
)

// Thickness is either a millimetre measurement or an enumerated label such as "6MM Clear".
// The two are never reconciled; the schema version decides which one a column holds.
type Thickness struct {
	MM    decimal.Decimal
	Label string
	Kind  ThicknessKind
}

// Millimeters builds a numeric thickness.
func Millimeters(mm decimal.Decimal) Thickness {
	return Thickness{Kind: ThicknessMillimeters, MM: mm}
}

// ThicknessLabelOf builds a label thickness. Blank labels yield an empty thickness.
func ThicknessLabelOf(label string) Thickness {
	label = strings.TrimSpace(label)
	if label == "" {
		return Thickness{}
	}
	return Thickness{Kind: ThicknessLabel, Label: label}
}

// ParseThickness reads a cell of unknown kind: numeric text becomes millimetres, anything else a label.
func ParseThickness(s string) Thickness {
	s = strings.TrimSpace(s)
	if s == "" {
		return Thickness{}
	}
	if mm, err := decimal.NewFromString(s); err == nil {
		return Millimeters(mm)
	}
	return ThicknessLabelOf(s)
}

// IsZero reports whether no thickness was recorded.
func (t Thickness) IsZero() bool {
	return t.Kind == ThicknessNone
}

// String renders the thickness the way it is displayed in tables and sheets.
func (t Thickness) String() string {
	switch t.Kind {
	case ThicknessMillimeters:
		return t.MM.String()
	case ThicknessLabel:
		return t.Label
	default:
		return ""
	}
}

// Value returns the cell value for spreadsheet output: a float64 for millimetres, text otherwise.
func (t Thickness) Value() any {
	if t.Kind == ThicknessMillimeters {
		f, _ := t.MM.Float64()
		return f
	}
	return t.String()
}
