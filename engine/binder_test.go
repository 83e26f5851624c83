package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/plotdash/dataset"
	"github.com/spektr-org/plotdash/engine"
)

const billsCSV = `bill_length,bill_depth,species,island
39.1,18.7,Adelie,Torgersen
39.5,17.4,Adelie,Torgersen
46.5,17.9,Chinstrap,Dream
45.2,14.8,Gentoo,Biscoe
50.0,16.3,Gentoo,Biscoe
`

func loadBills(t *testing.T) *dataset.Table {
	t.Helper()

	tbl, err := dataset.Load(strings.NewReader(billsCSV), dataset.WithName("bills"))
	require.NoError(t, err)

	return tbl
}

func column(t *testing.T, tbl *dataset.Table, name string) dataset.Column {
	t.Helper()

	col, ok := tbl.Lookup(name)
	require.True(t, ok, "column %q", name)

	return col
}

func newBinder(t *testing.T, tbl *dataset.Table, opts ...engine.Option) *engine.Binder {
	t.Helper()

	b, err := engine.New(tbl, engine.DefaultSlots(), opts...)
	require.NoError(t, err)

	return b
}

func TestRenderScatterEncodings(t *testing.T) {
	t.Parallel()

	tbl := loadBills(t)
	cols := tbl.Columns()

	for _, x := range cols {
		for _, y := range cols {
			for _, c := range append(cols, dataset.Column{}) {
				spec := engine.RenderScatter(x, y, c)
				assert.Equal(t, engine.ChartScatter, spec.Type)
				assert.Equal(t, x.Name(), spec.Encoding(engine.RoleX))
				assert.Equal(t, y.Name(), spec.Encoding(engine.RoleY))
				assert.Equal(t, c.Name(), spec.Encoding(engine.RoleColor))
			}
		}
	}

	spec := engine.RenderScatter(cols[0], cols[1], dataset.Column{})
	assert.Empty(t, spec.Color, "omitted color is absent")
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	tbl := loadBills(t)
	x, y, c := column(t, tbl, "species"), column(t, tbl, "bill_length"), column(t, tbl, "island")

	assert.Equal(t, engine.RenderBox(x, y, c), engine.RenderBox(x, y, c))
	assert.Equal(t, engine.RenderScatter(x, y, c), engine.RenderScatter(x, y, c))
	assert.Equal(t, engine.RenderHistogram(x, c), engine.RenderHistogram(x, c))
}

func TestRenderBoxOmission(t *testing.T) {
	t.Parallel()

	tbl := loadBills(t)
	x := column(t, tbl, "bill_length")

	spec := engine.RenderBox(x, dataset.Column{}, dataset.Column{})
	assert.Equal(t, engine.ChartSpec{Type: engine.ChartBox, X: "bill_length"}, spec)

	hist := engine.RenderHistogram(x, dataset.Column{})
	assert.Equal(t, engine.ChartSpec{Type: engine.ChartHistogram, X: "bill_length"}, hist)
}

func TestDefaultSelections(t *testing.T) {
	t.Parallel()

	b := newBinder(t, loadBills(t), engine.WithBackground("#F3E9D2"))

	tests := []struct {
		slot string
		want engine.ChartSpec
	}{
		{
			slot: "box",
			want: engine.ChartSpec{Slot: "box", Type: engine.ChartBox, Title: "Boxplot",
				X: "bill_length", Y: "bill_depth", Color: "island", Background: "#F3E9D2"},
		},
		{
			slot: "scatter",
			want: engine.ChartSpec{Slot: "scatter", Type: engine.ChartScatter, Title: "Scatterplot",
				X: "bill_length", Y: "bill_depth", Color: "island", Background: "#F3E9D2"},
		},
		{
			slot: "hist",
			want: engine.ChartSpec{Slot: "hist", Type: engine.ChartHistogram, Title: "Histogram",
				X: "bill_depth", Color: "island", Background: "#F3E9D2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			t.Parallel()

			sel, err := b.Defaults(tt.slot)
			require.NoError(t, err)

			spec, err := b.Render(tt.slot, sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec)
		})
	}
}

func TestSwappedDataset(t *testing.T) {
	t.Parallel()

	old := loadBills(t)
	renamed, err := dataset.Load(strings.NewReader("length,depth,kind\n1,2,a\n3,4,b\n"))
	require.NoError(t, err)

	b := newBinder(t, renamed)

	sel, err := b.Defaults("scatter")
	require.NoError(t, err)
	assert.Equal(t, "length", sel.X.Name())
	assert.Equal(t, "depth", sel.Y.Name())
	assert.Equal(t, "kind", sel.Color.Name())

	_, err = b.Select("scatter", map[engine.Role]string{engine.RoleX: "bill_length"})
	require.ErrorIs(t, err, engine.ErrUnknownColumn)

	stale := engine.Selection{X: column(t, old, "bill_length"), Y: sel.Y}
	_, err = b.Render("scatter", stale)
	require.ErrorIs(t, err, engine.ErrUnknownColumn)

	s := b.NewSession(nil)
	ctrl, ok := s.Control("x-axis-column-scatter")
	require.True(t, ok)
	assert.Equal(t, []string{"length", "depth", "kind"}, ctrl.Domain())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	b := newBinder(t, loadBills(t))

	sel, err := b.Select("box", map[engine.Role]string{
		engine.RoleX:     "species",
		engine.RoleColor: "",
	})
	require.NoError(t, err)
	assert.Equal(t, "species", sel.X.Name())
	assert.Equal(t, "bill_depth", sel.Y.Name(), "unnamed roles keep their default")
	assert.True(t, sel.Color.IsZero())

	_, err = b.Select("scatter", map[engine.Role]string{engine.RoleY: ""})
	require.ErrorIs(t, err, engine.ErrRequiredControl)

	_, err = b.Select("hist", map[engine.Role]string{engine.RoleY: "bill_length"})
	require.ErrorIs(t, err, engine.ErrUnknownControl, "histogram has no y control")

	_, err = b.Select("pie", nil)
	require.ErrorIs(t, err, engine.ErrUnknownSlot)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tbl := loadBills(t)

	_, err := engine.New(nil, engine.DefaultSlots())
	require.Error(t, err)

	_, err = engine.New(tbl, nil)
	require.ErrorContains(t, err, "slot table is empty")

	slots := []engine.Slot{
		{ID: "a", Type: "pie"},
		{ID: "b", Type: engine.ChartHistogram, Controls: []engine.ControlSpec{
			{ID: "b-x", Role: engine.RoleX, Default: "9"},
			{ID: "b-y", Role: engine.RoleY},
		}},
		{ID: "b", Type: engine.ChartScatter, Controls: []engine.ControlSpec{
			{ID: "c-x", Role: engine.RoleX},
			{ID: "c-y", Role: engine.RoleY, Optional: true},
		}},
	}

	_, err = engine.New(tbl, slots)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `unknown chart type "pie"`)
	assert.Contains(t, msg, `default "9" is out of range`)
	assert.Contains(t, msg, `role "y" not allowed for histogram`)
	assert.Contains(t, msg, `slot "b": duplicate id`)
	assert.Contains(t, msg, `cannot be optional for scatter`)
	assert.True(t, errors.Is(err, engine.ErrUnknownColumn))
}

func TestDefaultRefResolve(t *testing.T) {
	t.Parallel()

	tbl := loadBills(t)

	tests := []struct {
		ref  engine.DefaultRef
		want string
	}{
		{ref: engine.DefaultFirst, want: "bill_length"},
		{ref: "", want: "bill_length"},
		{ref: engine.DefaultSecond, want: "bill_depth"},
		{ref: engine.DefaultLast, want: "island"},
		{ref: engine.DefaultNone, want: ""},
		{ref: "2", want: "species"},
		{ref: "-2", want: "species"},
		{ref: "island", want: "island"},
	}

	for _, tt := range tests {
		col, err := tt.ref.Resolve(tbl)
		require.NoError(t, err, "ref %q", tt.ref)
		assert.Equal(t, tt.want, col.Name(), "ref %q", tt.ref)
	}

	_, err := engine.DefaultRef("flipper").Resolve(tbl)
	require.ErrorIs(t, err, engine.ErrUnknownColumn)
}

func TestRenderAll(t *testing.T) {
	t.Parallel()

	b := newBinder(t, loadBills(t))

	selections := make(map[string]engine.Selection)
	for _, slot := range b.Slots() {
		sel, err := b.Defaults(slot.ID)
		require.NoError(t, err)
		selections[slot.ID] = sel
	}

	specs, err := b.RenderAll(context.Background(), selections)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, engine.ChartHistogram, specs["hist"].Type)

	selections["nope"] = engine.Selection{}
	_, err = b.RenderAll(context.Background(), selections)
	require.ErrorIs(t, err, engine.ErrUnknownSlot)
}

func TestTable(t *testing.T) {
	t.Parallel()

	b := newBinder(t, loadBills(t), engine.WithPageSize(2))

	page := b.Table(0)
	assert.Equal(t, "bills", page.Title)
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 5, page.TotalRows)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, []string{"39.1", "18.7", "Adelie", "Torgersen"}, page.Rows[0])

	require.Len(t, page.Columns, 4)
	assert.Equal(t, "number", page.Columns[0].Type)
	assert.Equal(t, "right", page.Columns[0].Align)
	assert.Equal(t, "text", page.Columns[2].Type)

	last := b.Table(99)
	assert.Equal(t, 2, last.Page)
	assert.Len(t, last.Rows, 1)

	first := b.Table(-1)
	assert.Equal(t, 0, first.Page)
}
