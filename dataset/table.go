package dataset

import (
	"math"
	"strconv"

	"github.com/spektr-org/plotdash/schema"
)

// ============================================================================
// TABLE — Immutable in-memory dataset
// ============================================================================
// Built once at startup and shared read-only by every render. Nothing in this
// package mutates a Table after New returns, so no locking is needed.
// ============================================================================

// Table is an immutable table of named, typed columns.
type Table struct {
	name   string
	schema schema.Config
	names  []string
	index  map[string]int
	cells  [][]string  // per column; "" marks a missing cell
	nums   [][]float64 // per column; nil for categorical, NaN marks a missing cell
	rows   int
}

// Column is a handle on one column of a specific Table.
// The zero Column means "no column selected". A Column can only be obtained
// from the Table it belongs to, so an unknown name is never representable.
type Column struct {
	table *Table
	index int
	name  string
}

// Name returns the column name, or "" for the zero Column.
func (c Column) Name() string { return c.name }

// IsZero reports whether no column is selected.
func (c Column) IsZero() bool { return c.table == nil }

// Kind returns the value type of the column.
func (c Column) Kind() schema.Kind {
	if c.table == nil {
		return ""
	}
	return c.table.schema.Columns[c.index].Kind
}

// IsNumeric reports whether the column holds numbers.
func (c Column) IsNumeric() bool { return c.Kind() == schema.KindNumeric }

// Meta returns the discovered metadata of the column.
func (c Column) Meta() schema.Column {
	if c.table == nil {
		return schema.Column{}
	}
	return c.table.schema.Columns[c.index]
}

// BelongsTo reports whether the column was obtained from t.
func (c Column) BelongsTo(t *Table) bool { return c.table != nil && c.table == t }

func (c Column) String() string { return c.name }

// newTable builds a Table from already-split rows and their discovered schema.
func newTable(name string, headers []string, rows [][]string, sch *schema.Config, nulls map[string]bool) *Table {
	t := &Table{
		name:   name,
		schema: *sch,
		names:  append([]string(nil), headers...),
		index:  make(map[string]int, len(headers)),
		cells:  make([][]string, len(headers)),
		nums:   make([][]float64, len(headers)),
		rows:   len(rows),
	}

	for c, h := range headers {
		t.index[h] = c
		t.cells[c] = make([]string, len(rows))
		numeric := sch.Columns[c].Kind == schema.KindNumeric
		if numeric {
			t.nums[c] = make([]float64, len(rows))
		}

		for r, row := range rows {
			val := ""
			if c < len(row) {
				val = trimCell(row[c])
			}
			if nulls[val] {
				val = ""
			}
			t.cells[c][r] = val

			if numeric {
				f, ok := schema.ParseNumber(val)
				if !ok {
					f = math.NaN()
				}
				t.nums[c][r] = f
			}
		}
	}

	return t
}

// Name returns the dataset name.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Schema returns the discovered column metadata.
func (t *Table) Schema() schema.Config {
	sch := t.schema
	sch.Columns = append([]schema.Column(nil), t.schema.Columns...)
	return sch
}

// ColumnNames returns every column name in header order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

// Columns returns a handle for every column in header order.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.names))
	for i, n := range t.names {
		cols[i] = Column{table: t, index: i, name: n}
	}
	return cols
}

// Lookup resolves a column name. ok is false for names that are not columns
// of this table.
func (t *Table) Lookup(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return Column{table: t, index: i, name: name}, true
}

// At returns the column at position i; negative positions count from the end
// (-1 is the last column).
func (t *Table) At(i int) (Column, bool) {
	if i < 0 {
		i += len(t.names)
	}
	if i < 0 || i >= len(t.names) {
		return Column{}, false
	}
	return Column{table: t, index: i, name: t.names[i]}, true
}

// Row returns the cells of row i in column order. Missing cells are "".
func (t *Table) Row(i int) []string {
	if i < 0 || i >= t.rows {
		return nil
	}
	row := make([]string, len(t.names))
	for c := range t.names {
		row[c] = t.cells[c][i]
	}
	return row
}

// ── View implementation ──────────────────────────────────────────────────

func (t *Table) resolve(col Column) (int, bool) {
	if col.table != t {
		return 0, false
	}
	return col.index, true
}

// Text returns the raw cell of column col at row i ("" when missing).
func (t *Table) Text(i int, col Column) string {
	c, ok := t.resolve(col)
	if !ok || i < 0 || i >= t.rows {
		return ""
	}
	return t.cells[c][i]
}

// Float returns the numeric cell of column col at row i.
// ok is false for missing cells and categorical columns.
func (t *Table) Float(i int, col Column) (float64, bool) {
	c, ok := t.resolve(col)
	if !ok || i < 0 || i >= t.rows || t.nums[c] == nil {
		return 0, false
	}
	f := t.nums[c][i]
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Missing reports whether the cell of column col at row i is missing.
func (t *Table) Missing(i int, col Column) bool {
	c, ok := t.resolve(col)
	if !ok || i < 0 || i >= t.rows {
		return true
	}
	return t.cells[c][i] == ""
}

// Label returns a display form of the cell: numbers are normalised so that
// "18" and "18.0" group together.
func (t *Table) Label(i int, col Column) string {
	if f, ok := t.Float(i, col); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return t.Text(i, col)
}
