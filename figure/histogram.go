package figure

import (
	"fmt"
	"math"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// HISTOGRAM — Shared bins, stacked by color group
// ============================================================================

// Histogram holds per-group counts over shared bins. Numeric x has Edges
// (len(Edges) == bins+1); categorical x has one bin per XCategories entry.
type Histogram struct {
	Edges  []float64    `json:"edges,omitempty"`
	Counts []GroupCount `json:"counts"`
}

// GroupCount is the counts of one color group, one per bin.
type GroupCount struct {
	Group  string `json:"group"`
	Counts []int  `json:"counts"`
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	if len(h.Counts) == 0 {
		return 0
	}
	return len(h.Counts[0].Counts)
}

// Total returns the sum of all counts.
func (h *Histogram) Total() int {
	n := 0
	for _, g := range h.Counts {
		for _, c := range g.Counts {
			n += c
		}
	}
	return n
}

func buildHistogram(fig *Figure, view dataset.View, groups []dataset.Group, x dataset.Column, bins int) error {
	fig.YLabel = "count"
	h := &Histogram{}

	if !x.IsNumeric() {
		labels, index := positions(view, x)
		fig.XCategories = labels
		for _, g := range groups {
			counts := make([]int, len(labels))
			for i := 0; i < g.View.Len(); i++ {
				counts[index[g.View.Label(i, x)]]++
			}
			h.Counts = append(h.Counts, GroupCount{Group: g.Key, Counts: counts})
		}
		fig.Histogram = h
		return nil
	}

	values := dataset.Floats(view, x)
	if bins <= 0 {
		bins = SturgesBins(len(values))
	}
	edges, err := Edges(values, bins)
	if err != nil {
		return err
	}
	h.Edges = edges

	for _, g := range groups {
		counts := make([]int, bins)
		for _, v := range dataset.Floats(g.View, x) {
			counts[binOf(edges, v)]++
		}
		h.Counts = append(h.Counts, GroupCount{Group: g.Key, Counts: counts})
	}
	fig.Histogram = h
	return nil
}

// SturgesBins returns ceil(log2(n)) + 1, at least 1.
func SturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// Edges splits the range of values into bins equal-width bins. A range of
// width zero is widened to one unit centred on the value.
func Edges(values []float64, bins int) ([]float64, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bin count must be positive, got %d", ErrEncodingMismatch, bins)
	}

	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil, fmt.Errorf("%w: bin range [%v, %v] is not finite", ErrEncodingMismatch, lo, hi)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	return edges, nil
}

// binOf returns the bin of v. Bins are half-open except the last, which
// includes its upper edge.
func binOf(edges []float64, v float64) int {
	bins := len(edges) - 1
	i := int((v - edges[0]) / (edges[bins] - edges[0]) * float64(bins))
	return min(max(i, 0), bins-1)
}
