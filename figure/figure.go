// Package figure turns a chart spec into computed traces: box statistics,
// scatter points and histogram bins. It is the data half of the rendering
// backend; package render draws the result.
package figure

import (
	"errors"
	"fmt"

	"github.com/spektr-org/plotdash/dataset"
	"github.com/spektr-org/plotdash/engine"
)

// ============================================================================
// FIGURE — ChartSpec + Table → computed traces
// ============================================================================
// Entry point: Build(table, spec, opts...)
//
// Rows with a missing value in any encoded column are dropped before any
// computation. Color groups by the distinct values of its column, in order
// of first appearance, except on scatter charts where a numeric color column
// is drawn on a continuous ColorScale.
// ============================================================================

// ErrEncodingMismatch is wrapped by every error Build returns: the encodings
// of the spec do not make sense for the data.
var ErrEncodingMismatch = errors.New("encoding mismatch")

// Figure is a chart ready to draw.
type Figure struct {
	Slot       string           `json:"slot,omitempty"`
	Type       engine.ChartType `json:"type"`
	Title      string           `json:"title,omitempty"`
	Background string           `json:"background,omitempty"`

	XLabel     string `json:"xLabel"`
	YLabel     string `json:"yLabel"`
	ColorLabel string `json:"colorLabel,omitempty"`

	// Categories of a nominal x axis; XCategories[i] is drawn at position i.
	XCategories []string `json:"xCategories,omitempty"`
	// Categories of a nominal y axis (scatter only).
	YCategories []string `json:"yCategories,omitempty"`

	// Groups are the color groups, each with its palette color. A figure
	// without a color encoding has one group with an empty name.
	Groups []Group `json:"groups"`
	// ColorScale is set when a numeric color column colors points by value.
	ColorScale *ColorScale `json:"colorScale,omitempty"`

	Boxes     []Box      `json:"boxes,omitempty"`
	Series    []Series   `json:"series,omitempty"`
	Histogram *Histogram `json:"histogram,omitempty"`

	// Rows is the number of rows left after dropping missing values.
	Rows int `json:"rows"`
}

// Group is one color group.
type Group struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ColorScale maps the values of a numeric color column onto a gradient from
// Low (at Min) to High (at Max).
type ColorScale struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Low  string  `json:"low"`
	High string  `json:"high"`
}

// Position returns where v falls on the scale, clamped to [0, 1]. A scale
// of zero width puts every value at 0.
func (s *ColorScale) Position(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return min(max((v-s.Min)/(s.Max-s.Min), 0), 1)
}

// Legend reports whether the figure needs a legend of color groups.
func (f *Figure) Legend() bool { return f.ColorLabel != "" && f.ColorScale == nil }

// Build computes the figure of spec over table.
func Build(table *dataset.Table, spec engine.ChartSpec, opts ...Option) (*Figure, error) {
	cfg := applyOptions(opts)

	x, err := lookup(table, engine.RoleX, spec.X, true)
	if err != nil {
		return nil, err
	}
	y, err := lookup(table, engine.RoleY, spec.Y, spec.Type == engine.ChartScatter)
	if err != nil {
		return nil, err
	}
	color, err := lookup(table, engine.RoleColor, spec.Color, false)
	if err != nil {
		return nil, err
	}

	view := dataset.Complete(table, x, y, color)

	fig := &Figure{
		Slot:       spec.Slot,
		Type:       spec.Type,
		Title:      spec.Title,
		Background: spec.Background,
		XLabel:     x.Name(),
		YLabel:     y.Name(),
		ColorLabel: color.Name(),
		Rows:       view.Len(),
	}

	var shade dataset.Column
	if spec.Type == engine.ChartScatter && color.IsNumeric() {
		shade, color = color, dataset.Column{}
		fig.ColorScale = newColorScale(view, shade, cfg.ColorScale)
	}

	groups := dataset.GroupBy(view, color)
	if len(groups) > cfg.MaxColorGroups {
		return nil, fmt.Errorf("%w: color column %q has %d distinct values, more than %d",
			ErrEncodingMismatch, color.Name(), len(groups), cfg.MaxColorGroups)
	}
	for i, g := range groups {
		fig.Groups = append(fig.Groups, Group{Name: g.Key, Color: cfg.Palette[i%len(cfg.Palette)]})
	}

	switch spec.Type {
	case engine.ChartBox:
		err = buildBox(fig, view, groups, x, y)
	case engine.ChartScatter:
		err = buildScatter(fig, view, groups, x, y, shade)
	case engine.ChartHistogram:
		if !y.IsZero() {
			return nil, fmt.Errorf("%w: histogram takes no y encoding", ErrEncodingMismatch)
		}
		err = buildHistogram(fig, view, groups, x, cfg.Bins)
	default:
		return nil, fmt.Errorf("%w: unknown chart type %q", ErrEncodingMismatch, spec.Type)
	}
	if err != nil {
		return nil, err
	}

	return fig, nil
}

// lookup resolves an encoding to a column. An empty name is the zero Column
// unless the encoding is required.
func lookup(table *dataset.Table, role engine.Role, name string, required bool) (dataset.Column, error) {
	if name == "" {
		if required {
			return dataset.Column{}, fmt.Errorf("%w: %s encoding is required", ErrEncodingMismatch, role)
		}
		return dataset.Column{}, nil
	}
	col, ok := table.Lookup(name)
	if !ok {
		return dataset.Column{}, fmt.Errorf("%w: %s encoding %q is not a column of %s",
			ErrEncodingMismatch, role, name, table.Name())
	}
	return col, nil
}

// positions maps the labels of col to their first-seen index.
func positions(view dataset.View, col dataset.Column) ([]string, map[string]int) {
	labels := dataset.UniqueLabels(view, col)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return labels, index
}
