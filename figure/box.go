package figure

import (
	"fmt"
	"sort"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// BOX — Five-number summaries per x category and color group
// ============================================================================
// y is the value axis and must be numeric; x names the categories. Without
// y, x itself is the value axis and the figure has a single category.
// ============================================================================

// Box is one box of a box plot.
type Box struct {
	Group    string `json:"group"`
	Category string `json:"category"`
	// Position is the index of Category in Figure.XCategories.
	Position int `json:"position"`
	BoxStats
}

// BoxStats summarises a distribution.
type BoxStats struct {
	N            int       `json:"n"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lowerWhisker"`
	UpperWhisker float64   `json:"upperWhisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

func buildBox(fig *Figure, view dataset.View, groups []dataset.Group, x, y dataset.Column) error {
	value, category := y, x
	if y.IsZero() {
		value, category = x, dataset.Column{}
	}
	if !value.IsNumeric() {
		return fmt.Errorf("%w: box plot needs a numeric value axis, %q is %s",
			ErrEncodingMismatch, value.Name(), value.Kind())
	}

	if category.IsZero() {
		fig.XCategories = []string{""}
		fig.YLabel, fig.XLabel = x.Name(), ""
	} else {
		fig.XCategories, _ = positions(view, category)
	}

	for _, g := range groups {
		for _, cat := range dataset.GroupBy(g.View, category) {
			stats, ok := Summarize(dataset.Floats(cat.View, value))
			if !ok {
				continue
			}
			fig.Boxes = append(fig.Boxes, Box{
				Group:    g.Key,
				Category: cat.Key,
				Position: indexOf(fig.XCategories, cat.Key),
				BoxStats: stats,
			})
		}
	}
	return nil
}

// Summarize computes box statistics with linearly interpolated quartiles.
// Whiskers reach the most extreme values within 1.5 IQR of the box.
func Summarize(values []float64) (BoxStats, bool) {
	if len(values) == 0 {
		return BoxStats{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := BoxStats{
		N:      len(sorted),
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}

	iqr := s.Q3 - s.Q1
	lo, hi := s.Q1-1.5*iqr, s.Q3+1.5*iqr
	s.LowerWhisker, s.UpperWhisker = s.Q1, s.Q3

	for _, v := range sorted {
		if v >= lo {
			s.LowerWhisker = min(v, s.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hi {
			s.UpperWhisker = max(sorted[i], s.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < lo || v > hi {
			s.Outliers = append(s.Outliers, v)
		}
	}
	return s, true
}

// Quantile returns the p-quantile of sorted values, interpolating linearly
// between the closest ranks.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func indexOf(labels []string, key string) int {
	for i, l := range labels {
		if l == key {
			return i
		}
	}
	return 0
}
