package engine

import (
	"fmt"
	"sync"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// CONTROL — One dropdown, publishing its value on change
// ============================================================================
// Subscribers run synchronously on the goroutine that changed the value,
// after the control's lock is released, in subscription order.
// ============================================================================

// Control is the current selection of one dropdown. Its domain is the column
// set of the dataset, so it always holds a valid column (or nothing, when
// optional).
type Control struct {
	spec  ControlSpec
	slot  string
	table *dataset.Table

	mu     sync.Mutex
	value  dataset.Column
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn func(dataset.Column)
}

func newControl(slot string, spec ControlSpec, table *dataset.Table, init dataset.Column) *Control {
	return &Control{spec: spec, slot: slot, table: table, value: init}
}

// ID returns the control id.
func (c *Control) ID() string { return c.spec.ID }

// Slot returns the id of the slot the control drives.
func (c *Control) Slot() string { return c.slot }

// Role returns the encoding the control drives.
func (c *Control) Role() Role { return c.spec.Role }

// Optional reports whether the control may be cleared.
func (c *Control) Optional() bool { return c.spec.Optional }

// Domain returns the selectable values: every column of the dataset.
func (c *Control) Domain() []string { return c.table.ColumnNames() }

// Value returns the current column (zero when cleared).
func (c *Control) Value() dataset.Column {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set selects a column by name. Unknown names leave the value unchanged.
func (c *Control) Set(name string) error {
	col, ok := c.table.Lookup(name)
	if !ok {
		return fmt.Errorf("control %q: %w: %q", c.spec.ID, ErrUnknownColumn, name)
	}
	c.update(col)
	return nil
}

// Clear removes the selection of an optional control.
func (c *Control) Clear() error {
	if !c.spec.Optional {
		return fmt.Errorf("control %q: %w", c.spec.ID, ErrRequiredControl)
	}
	c.update(dataset.Column{})
	return nil
}

// Subscribe registers fn to be called with every new value. The returned
// function cancels the subscription.
func (c *Control) Subscribe(fn func(dataset.Column)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// update stores col and publishes it when it differs from the current value.
func (c *Control) update(col dataset.Column) {
	c.mu.Lock()
	if c.value == col {
		c.mu.Unlock()
		return
	}
	c.value = col
	subs := append([]subscription(nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(col)
	}
}
