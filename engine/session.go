package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// SESSION — Reactive wiring of controls to slots
// ============================================================================
// Each control publishes its value on change; each slot subscribes to its own
// controls and recomputes synchronously, handing the new spec to the
// session's Listener. A change to one slot's control never recomputes another
// slot.
// ============================================================================

// Listener receives every recomputed spec of a session.
type Listener func(slotID string, spec ChartSpec)

// Session is one user's set of controls bound to the binder's slots.
type Session struct {
	binder   *Binder
	controls map[string]*Control
	bySlot   map[string][]*Control
	listener Listener

	mu      sync.Mutex
	cancels []func()
}

// NewSession creates controls at their defaults and subscribes every slot to
// its controls. listener may be nil.
func (b *Binder) NewSession(listener Listener) *Session {
	s := &Session{
		binder:   b,
		controls: make(map[string]*Control, len(b.controls)),
		bySlot:   make(map[string][]*Control, len(b.slots)),
		listener: listener,
	}

	for _, slot := range b.slots {
		for _, cs := range slot.Controls {
			bound := b.controls[cs.ID]
			ctrl := newControl(slot.ID, bound.spec, b.table, bound.init)
			s.controls[cs.ID] = ctrl
			s.bySlot[slot.ID] = append(s.bySlot[slot.ID], ctrl)
		}
	}

	for _, slot := range b.slots {
		slotID := slot.ID
		for _, ctrl := range s.bySlot[slotID] {
			cancel := ctrl.Subscribe(func(dataset.Column) {
				s.recompute(slotID)
			})
			s.cancels = append(s.cancels, cancel)
		}
	}

	return s
}

// Control returns a control of the session by id.
func (s *Session) Control(id string) (*Control, bool) {
	c, ok := s.controls[id]
	return c, ok
}

// Set selects a column on a control.
func (s *Session) Set(controlID, column string) error {
	c, ok := s.controls[controlID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, controlID)
	}
	return c.Set(column)
}

// Clear removes the selection of an optional control.
func (s *Session) Clear(controlID string) error {
	c, ok := s.controls[controlID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, controlID)
	}
	return c.Clear()
}

// Selection returns the current selection of a slot.
func (s *Session) Selection(slotID string) (Selection, error) {
	ctrls, ok := s.bySlot[slotID]
	if !ok {
		if _, known := s.binder.slotIdx[slotID]; !known {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
		}
	}

	var sel Selection
	for _, c := range ctrls {
		sel = sel.With(c.Role(), c.Value())
	}
	return sel, nil
}

// Render computes the current spec of a slot without notifying the listener.
func (s *Session) Render(slotID string) (ChartSpec, error) {
	sel, err := s.Selection(slotID)
	if err != nil {
		return ChartSpec{}, err
	}
	return s.binder.Render(slotID, sel)
}

// Close cancels every subscription. Controls keep their values but no longer
// trigger recomputation.
func (s *Session) Close() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *Session) recompute(slotID string) {
	spec, err := s.Render(slotID)
	if err != nil {
		// Slot ids and controls come from the binder itself.
		s.binder.cfg.Logger.Error("recompute failed", slog.String("slot", slotID), slog.Any("err", err))
		return
	}

	s.binder.cfg.Logger.Debug("slot recomputed",
		slog.String("slot", slotID),
		slog.String("x", spec.X),
		slog.String("y", spec.Y),
		slog.String("color", spec.Color),
	)

	if s.listener != nil {
		s.listener(slotID, spec)
	}
}
