package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// BINDER — Dataset + slot table → chart specs
// ============================================================================
// Entry point: New(table, slots, opts...)
//
// The binder is immutable after New: the dataset, the slot table, the
// resolved defaults and the theme are read-only, so one Binder serves every
// session concurrently without locks. Per-user control state lives in
// Session.
// ============================================================================

// Binder binds a fixed slot table to an immutable dataset.
type Binder struct {
	table    *dataset.Table
	slots    []Slot
	slotIdx  map[string]int
	controls map[string]boundControl
	defaults map[string]Selection
	cfg      *config
}

type boundControl struct {
	slot string
	spec ControlSpec
	init dataset.Column
}

// New validates the slot table against the dataset and builds a Binder.
// Every problem in the slot table is reported, not only the first one.
func New(table *dataset.Table, slots []Slot, opts ...Option) (*Binder, error) {
	if table == nil {
		return nil, errors.New("binder requires a dataset")
	}

	b := &Binder{
		table:    table,
		slots:    make([]Slot, len(slots)),
		slotIdx:  make(map[string]int, len(slots)),
		controls: make(map[string]boundControl),
		defaults: make(map[string]Selection, len(slots)),
		cfg:      applyOptions(opts),
	}

	var merr *multierror.Error
	if len(slots) == 0 {
		merr = multierror.Append(merr, errors.New("slot table is empty"))
	}

	for i, slot := range slots {
		slot.Controls = append([]ControlSpec(nil), slot.Controls...)
		b.slots[i] = slot

		if slot.ID == "" {
			merr = multierror.Append(merr, fmt.Errorf("slot %d: missing id", i))
		} else if _, dup := b.slotIdx[slot.ID]; dup {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: duplicate id", slot.ID))
		}
		b.slotIdx[slot.ID] = i

		if !slot.Type.Valid() {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: unknown chart type %q", slot.ID, slot.Type))
			continue
		}

		sel, err := b.bindControls(slot)
		if err != nil {
			merr = multierror.Append(merr, err)
		}
		b.defaults[slot.ID] = sel
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid slot table: %w", err)
	}

	b.cfg.Logger.Debug("binder ready",
		slog.String("dataset", table.Name()),
		slog.Int("rows", table.Len()),
		slog.Int("slots", len(b.slots)),
	)

	return b, nil
}

// bindControls registers the controls of a slot and resolves their defaults.
func (b *Binder) bindControls(slot Slot) (Selection, error) {
	var merr *multierror.Error
	var sel Selection
	seenRoles := make(map[Role]bool)

	for _, c := range slot.Controls {
		if c.ID == "" {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: control without id", slot.ID))
			continue
		}
		if _, dup := b.controls[c.ID]; dup {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: duplicate control id %q", slot.ID, c.ID))
			continue
		}
		if !roleAllowed(slot.Type, c.Role) {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: control %q: role %q not allowed for %s",
				slot.ID, c.ID, c.Role, slot.Type))
			continue
		}
		if seenRoles[c.Role] {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: role %q bound twice", slot.ID, c.Role))
			continue
		}
		seenRoles[c.Role] = true

		col, err := c.Default.Resolve(b.table)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: control %q: %w", slot.ID, c.ID, err))
			continue
		}
		if col.IsZero() && !c.Optional {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: control %q: %w", slot.ID, c.ID, ErrRequiredControl))
			continue
		}

		b.controls[c.ID] = boundControl{slot: slot.ID, spec: c, init: col}
		sel = sel.With(c.Role, col)
	}

	for _, r := range requiredRoles[slot.Type] {
		c, ok := slot.Control(r)
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: %s requires a %q control", slot.ID, slot.Type, r))
		} else if c.Optional {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: control %q cannot be optional for %s",
				slot.ID, c.ID, slot.Type))
		}
	}

	return sel, merr.ErrorOrNil()
}

// Dataset returns the bound dataset.
func (b *Binder) Dataset() *dataset.Table { return b.table }

// Slots returns a copy of the slot table.
func (b *Binder) Slots() []Slot {
	out := make([]Slot, len(b.slots))
	for i, s := range b.slots {
		s.Controls = append([]ControlSpec(nil), s.Controls...)
		out[i] = s
	}
	return out
}

// Slot looks up a slot by id.
func (b *Binder) Slot(id string) (Slot, bool) {
	i, ok := b.slotIdx[id]
	if !ok {
		return Slot{}, false
	}
	s := b.slots[i]
	s.Controls = append([]ControlSpec(nil), s.Controls...)
	return s, true
}

// Defaults returns the initial selection of a slot.
func (b *Binder) Defaults(slotID string) (Selection, error) {
	sel, ok := b.defaults[slotID]
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	return sel, nil
}

// Select resolves column names for the roles of a slot. Roles missing from
// values keep their default; an empty name clears an optional role.
func (b *Binder) Select(slotID string, values map[Role]string) (Selection, error) {
	i, ok := b.slotIdx[slotID]
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	slot := b.slots[i]
	sel := b.defaults[slotID]

	for role, name := range values {
		c, ok := slot.Control(role)
		if !ok {
			return Selection{}, fmt.Errorf("%w: slot %q has no %q control", ErrUnknownControl, slotID, role)
		}

		if name == "" {
			if !c.Optional {
				return Selection{}, fmt.Errorf("control %q: %w", c.ID, ErrRequiredControl)
			}
			sel = sel.With(role, dataset.Column{})
			continue
		}

		col, ok := b.table.Lookup(name)
		if !ok {
			return Selection{}, fmt.Errorf("control %q: %w: %q", c.ID, ErrUnknownColumn, name)
		}
		sel = sel.With(role, col)
	}

	return sel, nil
}

// Render produces the chart spec of a slot for a selection.
func (b *Binder) Render(slotID string, sel Selection) (ChartSpec, error) {
	i, ok := b.slotIdx[slotID]
	if !ok {
		return ChartSpec{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	for _, col := range []dataset.Column{sel.X, sel.Y, sel.Color} {
		if !col.IsZero() && !col.BelongsTo(b.table) {
			return ChartSpec{}, fmt.Errorf("%w: %q is not a column of %s", ErrUnknownColumn, col.Name(), b.table.Name())
		}
	}

	slot := b.slots[i]
	spec := renderSelection(slot.Type, sel)
	spec.Slot = slot.ID
	spec.Title = slot.Title
	spec.Background = b.cfg.Background
	return spec, nil
}

// RenderAll renders several slots concurrently. Slots are independent, so
// results carry no ordering guarantee beyond being keyed by slot id.
func (b *Binder) RenderAll(ctx context.Context, selections map[string]Selection) (map[string]ChartSpec, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]ChartSpec, len(selections))
	)

	g, ctx := errgroup.WithContext(ctx)
	for slotID, sel := range selections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			spec, err := b.Render(slotID, sel)
			if err != nil {
				return err
			}
			mu.Lock()
			out[slotID] = spec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Logger returns the binder logger.
func (b *Binder) Logger() *slog.Logger { return b.cfg.Logger }

// PageSize returns the number of rows per table page.
func (b *Binder) PageSize() int { return b.cfg.PageSize }
