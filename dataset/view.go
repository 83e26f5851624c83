package dataset

// ============================================================================
// VIEW — Zero-copy data access
// ============================================================================
// Chart builders read the dataset through this interface.
//
// Implementations:
//   *Table   — the whole dataset
//   subView  — a subset of rows (indices into the parent, no copy)
// ============================================================================

// View provides indexed, read-only access to rows of a Table.
type View interface {
	Len() int
	Text(i int, col Column) string
	Float(i int, col Column) (float64, bool)
	Missing(i int, col Column) bool
	Label(i int, col Column) string
}

// subView is a filtered subset of a parent View.
type subView struct {
	parent  View
	indices []int
}

// Subset returns a view of the given parent rows. The indices are not copied.
func Subset(parent View, indices []int) View {
	return &subView{parent: parent, indices: indices}
}

func (v *subView) Len() int { return len(v.indices) }

func (v *subView) Text(i int, col Column) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Text(v.indices[i], col)
}

func (v *subView) Float(i int, col Column) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Float(v.indices[i], col)
}

func (v *subView) Missing(i int, col Column) bool {
	if i < 0 || i >= len(v.indices) {
		return true
	}
	return v.parent.Missing(v.indices[i], col)
}

func (v *subView) Label(i int, col Column) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Label(v.indices[i], col)
}

// ============================================================================
// FILTERING & GROUPING
// ============================================================================

// Complete returns the rows where none of the given columns is missing.
// Zero columns are ignored.
func Complete(view View, cols ...Column) View {
	indices := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		keep := true
		for _, c := range cols {
			if c.IsZero() {
				continue
			}
			if view.Missing(i, c) {
				keep = false
				break
			}
		}
		if keep {
			indices = append(indices, i)
		}
	}
	return Subset(view, indices)
}

// Group is a set of rows sharing one value of a column.
type Group struct {
	Key  string
	View View
}

// GroupBy partitions a view by the values of col, in order of first
// appearance. The zero Column yields a single group with an empty key.
func GroupBy(view View, col Column) []Group {
	if col.IsZero() {
		return []Group{{View: view}}
	}

	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Label(i, col)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:  key,
			View: Subset(view, grouped[key]),
		})
	}
	return groups
}

// UniqueLabels returns distinct labels of col across a view in order of first
// appearance.
func UniqueLabels(view View, col Column) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Label(i, col)
		if !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// Floats collects the numeric values of col across a view, skipping missing
// cells.
func Floats(view View, col Column) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Float(i, col); ok {
			out = append(out, f)
		}
	}
	return out
}
