package figure

import (
	"github.com/spektr-org/plotdash/dataset"
)

// Series is the points of one color group. Values holds the color column
// value of each point when the figure has a ColorScale.
type Series struct {
	Group  string    `json:"group"`
	Points []Point   `json:"points"`
	Values []float64 `json:"values,omitempty"`
}

// Point is one scatter point. Categorical axes carry the category position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func buildScatter(fig *Figure, view dataset.View, groups []dataset.Group, x, y, shade dataset.Column) error {
	xPos, yPos := axis(view, x), axis(view, y)
	fig.XCategories = xPos.labels
	fig.YCategories = yPos.labels

	for _, g := range groups {
		s := Series{Group: g.Key, Points: make([]Point, 0, g.View.Len())}
		for i := 0; i < g.View.Len(); i++ {
			s.Points = append(s.Points, Point{X: xPos.value(g.View, i), Y: yPos.value(g.View, i)})
			if !shade.IsZero() {
				v, _ := g.View.Float(i, shade)
				s.Values = append(s.Values, v)
			}
		}
		fig.Series = append(fig.Series, s)
	}
	return nil
}

func newColorScale(view dataset.View, col dataset.Column, colors [2]string) *ColorScale {
	s := &ColorScale{Low: colors[0], High: colors[1]}
	values := dataset.Floats(view, col)
	if len(values) == 0 {
		return s
	}
	s.Min, s.Max = values[0], values[0]
	for _, v := range values[1:] {
		s.Min, s.Max = min(s.Min, v), max(s.Max, v)
	}
	return s
}

// scale maps a column onto a numeric axis: numbers as they are, categories
// by position of first appearance.
type scale struct {
	col    dataset.Column
	labels []string
	index  map[string]int
}

func axis(view dataset.View, col dataset.Column) scale {
	s := scale{col: col}
	if !col.IsNumeric() {
		s.labels, s.index = positions(view, col)
	}
	return s
}

func (s scale) value(view dataset.View, i int) float64 {
	if s.index != nil {
		return float64(s.index[view.Label(i, s.col)])
	}
	f, _ := view.Float(i, s.col)
	return f
}
