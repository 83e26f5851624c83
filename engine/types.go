package engine

import (
	"errors"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// BINDER TYPES
// ============================================================================
// ChartSpec is the contract between the binder and the rendering backend.
// It names the chart type and its encodings, nothing more: no pixels, no
// computed data.
// ============================================================================

var (
	// ErrUnknownSlot is returned for a slot id that is not in the slot table.
	ErrUnknownSlot = errors.New("unknown chart slot")
	// ErrUnknownControl is returned for a control id that is not in the slot table.
	ErrUnknownControl = errors.New("unknown control")
	// ErrUnknownColumn is returned when a value is not a column of the dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrRequiredControl is returned when clearing a control that must hold a column.
	ErrRequiredControl = errors.New("control requires a column")
)

// ChartType identifies the kind of chart a slot renders.
type ChartType string

const (
	ChartBox       ChartType = "box"
	ChartScatter   ChartType = "scatter"
	ChartHistogram ChartType = "histogram"
)

// Valid reports whether t is a known chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartBox, ChartScatter, ChartHistogram:
		return true
	}
	return false
}

// Role is the encoding a control drives.
type Role string

const (
	RoleX     Role = "x"
	RoleY     Role = "y"
	RoleColor Role = "color"
)

// ChartSpec is a render-ready chart description.
// Empty Y or Color means the encoding is absent.
type ChartSpec struct {
	Slot       string    `json:"slot,omitempty"`
	Type       ChartType `json:"type"`
	Title      string    `json:"title,omitempty"`
	X          string    `json:"x"`
	Y          string    `json:"y,omitempty"`
	Color      string    `json:"color,omitempty"`
	Background string    `json:"background,omitempty"`
}

// Encoding returns the column name bound to role, or "".
func (s ChartSpec) Encoding(role Role) string {
	switch role {
	case RoleX:
		return s.X
	case RoleY:
		return s.Y
	case RoleColor:
		return s.Color
	}
	return ""
}

// Selection holds the current column of every role of a slot.
// A zero Column means the role is unset.
type Selection struct {
	X     dataset.Column
	Y     dataset.Column
	Color dataset.Column
}

// Get returns the column bound to role.
func (s Selection) Get(role Role) dataset.Column {
	switch role {
	case RoleX:
		return s.X
	case RoleY:
		return s.Y
	case RoleColor:
		return s.Color
	}
	return dataset.Column{}
}

// With returns a copy of s with role bound to col.
func (s Selection) With(role Role, col dataset.Column) Selection {
	switch role {
	case RoleX:
		s.X = col
	case RoleY:
		s.Y = col
	case RoleColor:
		s.Color = col
	}
	return s
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a page of the dataset.
type TableData struct {
	Title     string     `json:"title"`
	Columns   []Column   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Page      int        `json:"page"`
	PageSize  int        `json:"pageSize"`
	PageCount int        `json:"pageCount"`
	TotalRows int        `json:"totalRows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}
