package entry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Input is the raw form data for a new rejection record.
type Input struct {
	Date      time.Time `validate:"required"`
	Size      string
	Thickness string
	GlassType string
	Reason    string
	Vendor    string
	SO        string
	Dept      string
	Qty       int `validate:"min=1"`
}

// Row is a shaped entry in the exact column order of its schema.
type Row struct {
	Schema Schema
	Values []any
}

// Strings renders every cell as text, in column order.
func (r Row) Strings() []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		out[i] = cast.ToString(v)
	}
	return out
}

// Value returns the cell for column c, or nil when the schema has no such column.
func (r Row) Value(c Column) any {
	for i, col := range r.Schema.Columns {
		if col == c && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return nil
}

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every form field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("%s: %s", common.ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

var validate = validator.New()

// Validate checks the required date and the minimum qty.
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: "is required"})
		case "min":
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: "must be at least " + fe.Param()})
		default:
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: "is invalid"})
		}
	}
	return verr
}

// Shape validates the input and lays it out in the schema's column order, deriving
// week, month, year and the formatted date.
func Shape(in Input, schema Schema) (Row, error) {
	if err := Validate(in); err != nil {
		return Row{}, err
	}
	if len(schema.Columns) == 0 {
		return Row{}, fmt.Errorf("%w: schema %q has no columns", common.ErrInvalidConfig, schema.Name)
	}

	date := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, time.UTC)
	derived := model.Derive(date)

	values := make([]any, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		v, err := cell(col, in, date, derived, schema)
		if err != nil {
			return Row{}, err
		}
		values = append(values, v)
	}

	return Row{Schema: schema, Values: values}, nil
}

func cell(col Column, in Input, date time.Time, d model.Derived, schema Schema) (any, error) {
	number := func(n int) any {
		if schema.NumbersAsText {
			return strconv.Itoa(n)
		}
		return n
	}

	switch col {
	case ColWeek:
		return number(d.Week), nil
	case ColDate:
		return date.Format(schema.DateLayout), nil
	case ColMonth:
		if schema.Months == MonthNumber {
			return number(d.Month), nil
		}
		return date.Month().String(), nil
	case ColYear:
		return number(d.Year), nil
	case ColMonthYear:
		return d.MonthYear, nil
	case ColMonthYearSort:
		return number(d.MonthYearSort), nil
	case ColSize:
		return strings.TrimSpace(in.Size), nil
	case ColThickness, ColThicknessMM:
		return thicknessCell(in.Thickness, schema)
	case ColType:
		return strings.TrimSpace(in.GlassType), nil
	case ColReason:
		return strings.TrimSpace(in.Reason), nil
	case ColQty:
		return number(in.Qty), nil
	case ColVendor:
		return strings.TrimSpace(in.Vendor), nil
	case ColSO:
		return strings.TrimSpace(in.SO), nil
	case ColDept:
		return strings.TrimSpace(in.Dept), nil
	default:
		return nil, fmt.Errorf("%w: schema %q has unsupported column %q", common.ErrInvalidConfig, schema.Name, col)
	}
}

func thicknessCell(raw string, schema Schema) (any, error) {
	raw = strings.TrimSpace(raw)
	if schema.Thickness != model.ThicknessMillimeters {
		return raw, nil
	}
	if raw == "" {
		return "", nil
	}

	mm, err := decimal.NewFromString(strings.TrimSuffix(strings.ToLower(raw), "mm"))
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "Thickness", Message: "must be a number of millimetres"}}}
	}
	if mm.IsNegative() {
		return nil, &ValidationError{Fields: []FieldError{{Field: "Thickness", Message: "cannot be negative"}}}
	}
	if schema.NumbersAsText {
		return mm.String(), nil
	}
	f, _ := mm.Float64()
	return f, nil
}
