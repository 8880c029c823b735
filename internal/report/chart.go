package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ChartKind names the chart family drawn for a summary table.
type ChartKind string

// Chart kinds used by the report.
const (
	ChartLine     ChartKind = "line"
	ChartColumn   ChartKind = "column"
	ChartDoughnut ChartKind = "doughnut"
)

// Range is a single-column cell range on a worksheet, rows inclusive.
type Range struct {
	Sheet    string
	Col      int
	FirstRow int
	LastRow  int
}

// Ref renders the range as an absolute sheet reference, e.g. ChartData!$A$2:$A$54.
func (r Range) Ref() string {
	from, _ := excelize.CoordinatesToCellName(r.Col, r.FirstRow, true)
	to, _ := excelize.CoordinatesToCellName(r.Col, r.LastRow, true)
	return fmt.Sprintf("%s!%s:%s", r.Sheet, from, to)
}

// Header is the cell directly above the range, used as the series name.
func (r Range) Header() string {
	cell, _ := excelize.CoordinatesToCellName(r.Col, r.FirstRow-1, true)
	return fmt.Sprintf("%s!%s", r.Sheet, cell)
}

// Rows is the number of cells in the range.
func (r Range) Rows() int {
	return r.LastRow - r.FirstRow + 1
}

// ChartSpec describes one chart independently of the xlsx writer.
type ChartSpec struct {
	Kind       ChartKind
	Title      string
	XAxisTitle string
	YAxisTitle string
	Categories Range
	Values     Range
	// Markers, when set, is drawn as a column series over the same categories.
	Markers *Range
	Anchor  string
}

const (
	chartWidth  = 640
	chartHeight = 320
	holeSize    = 40
)

// excelizeCharts binds a spec to excelize chart options. The first chart is the
// primary plot; any further charts are combined into it.
func (s ChartSpec) excelizeCharts() ([]*excelize.Chart, error) {
	title := []excelize.RichTextRun{{Text: s.Title}}
	dim := excelize.ChartDimension{Width: chartWidth, Height: chartHeight}
	series := []excelize.ChartSeries{{
		Name:       s.Values.Header(),
		Categories: s.Categories.Ref(),
		Values:     s.Values.Ref(),
	}}

	switch s.Kind {
	case ChartLine:
		series[0].Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
		line := &excelize.Chart{
			Type:      excelize.Line,
			Series:    series,
			Title:     title,
			Dimension: dim,
			Legend:    excelize.ChartLegend{Position: "bottom"},
			XAxis: excelize.ChartAxis{
				Title: []excelize.RichTextRun{{Text: s.XAxisTitle}},
			},
			YAxis: excelize.ChartAxis{
				Title:          []excelize.RichTextRun{{Text: s.YAxisTitle}},
				MajorGridLines: true,
			},
			ShowBlanksAs: "gap",
		}
		charts := []*excelize.Chart{line}
		if s.Markers != nil {
			charts = append(charts, &excelize.Chart{
				Type: excelize.Col,
				Series: []excelize.ChartSeries{{
					Name:       s.Markers.Header(),
					Categories: s.Categories.Ref(),
					Values:     s.Markers.Ref(),
					Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"A6A6A6"}},
				}},
			})
		}
		return charts, nil

	case ChartColumn:
		vary := true
		return []*excelize.Chart{{
			Type:       excelize.Col,
			Series:     series,
			Title:      title,
			Dimension:  dim,
			VaryColors: &vary,
			Legend:     excelize.ChartLegend{Position: "none"},
			PlotArea:   excelize.ChartPlotArea{ShowVal: true},
			XAxis: excelize.ChartAxis{
				Title: []excelize.RichTextRun{{Text: s.XAxisTitle}},
			},
			YAxis: excelize.ChartAxis{
				Title:          []excelize.RichTextRun{{Text: s.YAxisTitle}},
				MajorGridLines: true,
			},
		}}, nil

	case ChartDoughnut:
		return []*excelize.Chart{{
			Type:      excelize.Doughnut,
			Series:    series,
			Title:     title,
			Dimension: dim,
			HoleSize:  holeSize,
			Legend:    excelize.ChartLegend{Position: "right"},
			PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		}}, nil

	default:
		return nil, fmt.Errorf("unsupported chart kind %q", s.Kind)
	}
}
