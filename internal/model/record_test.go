package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want Derived
	}{
		{
			name: "mid year",
			date: time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC),
			want: Derived{Year: 2024, Month: 4, Quarter: "2024Q2", Week: 14, MonthYear: "2024-04", MonthYearSort: 202404},
		},
		{
			name: "iso week belongs to previous year",
			date: time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: Derived{Year: 2021, Month: 1, Quarter: "2021Q1", Week: 53, MonthYear: "2021-01", MonthYearSort: 202101},
		},
		{
			name: "december in week one",
			date: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC),
			want: Derived{Year: 2024, Month: 12, Quarter: "2024Q4", Week: 1, MonthYear: "2024-12", MonthYearSort: 202412},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.date))
		})
	}
}

func TestRecord_ReasonKey(t *testing.T) {
	for _, reason := range []string{"Scratched", " scratched ", "SCRATCHED"} {
		assert.Equal(t, "scratched", Record{Reason: reason}.ReasonKey(), reason)
	}
}

func TestRecordSet_IsolatedFromCaller(t *testing.T) {
	records := []Record{{Qty: 2}, {Qty: 3}}
	set := NewRecordSet(records)
	records[0].Qty = 100

	assert.Equal(t, 5, set.TotalQty())

	out := set.Records()
	out[1].Qty = 100
	assert.Equal(t, 3, set.At(1).Qty)

	filtered := set.Filter(func(r Record) bool { return r.Qty > 2 })
	assert.Equal(t, 1, filtered.Len())
	assert.Equal(t, 2, set.Len())
}

func TestParseThickness(t *testing.T) {
	tests := []struct {
		in       string
		wantKind ThicknessKind
		wantStr  string
	}{
		{in: "5.7", wantKind: ThicknessMillimeters, wantStr: "5.7"},
		{in: " 6 ", wantKind: ThicknessMillimeters, wantStr: "6"},
		{in: "6MM Clear", wantKind: ThicknessLabel, wantStr: "6MM Clear"},
		{in: "", wantKind: ThicknessNone, wantStr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseThickness(tt.in)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestThickness_Value(t *testing.T) {
	assert.Equal(t, 5.7, Millimeters(decimal.RequireFromString("5.7")).Value())
	assert.Equal(t, "Laminated", ThicknessLabelOf("Laminated").Value())
	assert.True(t, ThicknessLabelOf("  ").IsZero())
}

func TestRecordSet_NewestFirst(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	set := NewRecordSet([]Record{
		{Reason: "a", Date: day(1)},
		{Reason: "undated-1"},
		{Reason: "b", Date: day(9)},
		{Reason: "c", Date: day(1)},
		{Reason: "undated-2"},
	})

	got := set.NewestFirst()
	reasons := make([]string, 0, got.Len())
	got.Each(func(_ int, r Record) { reasons = append(reasons, r.Reason) })

	assert.Equal(t, []string{"b", "a", "c", "undated-1", "undated-2"}, reasons)
	assert.Equal(t, "a", set.At(0).Reason)
}
