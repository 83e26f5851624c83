package engine

import (
	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// RENDER OPERATIONS — (control values) → ChartSpec
// ============================================================================
// Pure and total: no error path, no I/O, no access to cell data. A zero
// Column leaves its encoding absent, so RenderBox(x, Column{}, Column{}) is
// the "x only" box plot. Whether the encodings make sense for the data is
// decided by the rendering backend.
// ============================================================================

// RenderBox describes a box plot of y grouped by the categories of x,
// optionally split by color.
func RenderBox(x, y, color dataset.Column) ChartSpec {
	return ChartSpec{
		Type:  ChartBox,
		X:     x.Name(),
		Y:     y.Name(),
		Color: color.Name(),
	}
}

// RenderScatter describes a scatter plot of y against x, optionally colored.
func RenderScatter(x, y, color dataset.Column) ChartSpec {
	return ChartSpec{
		Type:  ChartScatter,
		X:     x.Name(),
		Y:     y.Name(),
		Color: color.Name(),
	}
}

// RenderHistogram describes the frequency distribution of x, optionally
// stacked by color.
func RenderHistogram(x, color dataset.Column) ChartSpec {
	return ChartSpec{
		Type:  ChartHistogram,
		X:     x.Name(),
		Color: color.Name(),
	}
}

// renderSelection dispatches to the render operation of a chart type.
func renderSelection(chartType ChartType, sel Selection) ChartSpec {
	switch chartType {
	case ChartScatter:
		return RenderScatter(sel.X, sel.Y, sel.Color)
	case ChartHistogram:
		return RenderHistogram(sel.X, sel.Color)
	default:
		return RenderBox(sel.X, sel.Y, sel.Color)
	}
}
