package engine

import (
	"fmt"
	"strconv"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// SLOT TABLE — Declarative {slot, chart type, controls}
// ============================================================================

// Slot is one chart on the dashboard and the controls that drive it.
type Slot struct {
	ID       string        `json:"id"`
	Type     ChartType     `json:"type"`
	Title    string        `json:"title"`
	Controls []ControlSpec `json:"controls"`
}

// ControlSpec declares one dropdown of a slot.
type ControlSpec struct {
	ID       string     `json:"id"`
	Role     Role       `json:"role"`
	Label    string     `json:"label,omitempty"`
	Default  DefaultRef `json:"default"`
	Optional bool       `json:"optional"`
}

// Control returns the control spec bound to role, if any.
func (s Slot) Control(role Role) (ControlSpec, bool) {
	for _, c := range s.Controls {
		if c.Role == role {
			return c, true
		}
	}
	return ControlSpec{}, false
}

// DefaultRef names the initial column of a control: a column name, a
// position keyword, or an integer position (negative counts from the end).
type DefaultRef string

const (
	DefaultFirst  DefaultRef = "first"
	DefaultSecond DefaultRef = "second"
	DefaultLast   DefaultRef = "last"
	DefaultNone   DefaultRef = "none"
)

// Resolve finds the column a default refers to. Exact column names win over
// keywords and positions. DefaultNone resolves to the zero Column.
func (d DefaultRef) Resolve(t *dataset.Table) (dataset.Column, error) {
	if col, ok := t.Lookup(string(d)); ok {
		return col, nil
	}

	pos := 0
	switch d {
	case DefaultNone:
		return dataset.Column{}, nil
	case DefaultFirst, "":
		pos = 0
	case DefaultSecond:
		pos = 1
	case DefaultLast:
		pos = -1
	default:
		n, err := strconv.Atoi(string(d))
		if err != nil {
			return dataset.Column{}, fmt.Errorf("%w: default %q", ErrUnknownColumn, string(d))
		}
		pos = n
	}

	col, ok := t.At(pos)
	if !ok {
		return dataset.Column{}, fmt.Errorf("%w: default %q is out of range for %d columns",
			ErrUnknownColumn, string(d), len(t.ColumnNames()))
	}
	return col, nil
}

// allowedRoles lists the roles each chart type accepts.
var allowedRoles = map[ChartType][]Role{
	ChartBox:       {RoleX, RoleY, RoleColor},
	ChartScatter:   {RoleX, RoleY, RoleColor},
	ChartHistogram: {RoleX, RoleColor},
}

// requiredRoles lists the roles each chart type cannot render without.
var requiredRoles = map[ChartType][]Role{
	ChartBox:       {RoleX},
	ChartScatter:   {RoleX, RoleY},
	ChartHistogram: {RoleX},
}

func roleAllowed(t ChartType, r Role) bool {
	for _, allowed := range allowedRoles[t] {
		if allowed == r {
			return true
		}
	}
	return false
}

// DefaultSlots is the classic three-chart dashboard: box and scatter start on
// the first, second and last columns; the histogram on the second and last.
func DefaultSlots() []Slot {
	return []Slot{
		{
			ID:    "box",
			Type:  ChartBox,
			Title: "Boxplot",
			Controls: []ControlSpec{
				{ID: "x-axis-column-box", Role: RoleX, Label: "X axis", Default: DefaultFirst},
				{ID: "y-axis-column-box", Role: RoleY, Label: "Y axis", Default: DefaultSecond, Optional: true},
				{ID: "color-column-box", Role: RoleColor, Label: "Color", Default: DefaultLast, Optional: true},
			},
		},
		{
			ID:    "scatter",
			Type:  ChartScatter,
			Title: "Scatterplot",
			Controls: []ControlSpec{
				{ID: "x-axis-column-scatter", Role: RoleX, Label: "X axis", Default: DefaultFirst},
				{ID: "y-axis-column-scatter", Role: RoleY, Label: "Y axis", Default: DefaultSecond},
				{ID: "color-column-scatter", Role: RoleColor, Label: "Color", Default: DefaultLast, Optional: true},
			},
		},
		{
			ID:    "hist",
			Type:  ChartHistogram,
			Title: "Histogram",
			Controls: []ControlSpec{
				{ID: "x-axis-column-hist", Role: RoleX, Label: "X axis", Default: DefaultSecond},
				{ID: "color-column-hist", Role: RoleColor, Label: "Color", Default: DefaultLast, Optional: true},
			},
		},
	}
}
