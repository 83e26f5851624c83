package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
	"github.com/spektr-org/plotdash/render"
)

// ============================================================================
// HTTP HANDLERS
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.binder.Table(page))
}

// slotInfo describes a slot and its controls for clients.
type slotInfo struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Controls []controlInfo `json:"controls"`
}

type controlInfo struct {
	ID       string   `json:"id"`
	Role     string   `json:"role"`
	Label    string   `json:"label,omitempty"`
	Optional bool     `json:"optional"`
	Default  string   `json:"default"`
	Domain   []string `json:"domain"`
}

func (s *Server) handleSlots(w http.ResponseWriter, _ *http.Request) {
	domain := s.binder.Dataset().ColumnNames()

	out := make([]slotInfo, 0)
	for _, slot := range s.binder.Slots() {
		sel, err := s.binder.Defaults(slot.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		info := slotInfo{ID: slot.ID, Type: string(slot.Type), Title: slot.Title}
		for _, c := range slot.Controls {
			info.Controls = append(info.Controls, controlInfo{
				ID:       c.ID,
				Role:     string(c.Role),
				Label:    c.Label,
				Optional: c.Optional,
				Default:  sel.Get(c.Role).Name(),
				Domain:   domain,
			})
		}
		out = append(out, info)
	}

	s.writeJSON(w, out)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := s.specFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, spec)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	spec, err := s.specFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fig, err := figure.Build(s.binder.Dataset(), spec, s.opts.FigureOptions...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, fig)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok || name != "chart" {
		http.NotFound(w, r)
		return
	}
	format, err := render.ParseFormat(ext)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	spec, err := s.specFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fig, err := figure.Build(s.binder.Dataset(), spec, s.opts.FigureOptions...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, fig, format, s.opts.Size); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// specFromRequest renders the slot named in the path with the selection in
// the query: x, y and color name columns, missing keys keep the default and
// empty values clear optional controls.
func (s *Server) specFromRequest(r *http.Request) (engine.ChartSpec, error) {
	slotID := r.PathValue("id")

	values := make(map[engine.Role]string)
	query := r.URL.Query()
	for _, role := range []engine.Role{engine.RoleX, engine.RoleY, engine.RoleColor} {
		if query.Has(string(role)) {
			values[role] = query.Get(string(role))
		}
	}

	sel, err := s.binder.Select(slotID, values)
	if err != nil {
		return engine.ChartSpec{}, err
	}
	return s.binder.Render(slotID, sel)
}

// chartURL is the image URL of a spec. Every control of the slot is spelled
// out so that cleared controls stay cleared.
func (s *Server) chartURL(spec engine.ChartSpec) string {
	slot, ok := s.binder.Slot(spec.Slot)
	if !ok {
		return ""
	}

	q := url.Values{}
	for _, c := range slot.Controls {
		q.Set(string(c.Role), spec.Encoding(c.Role))
	}
	return fmt.Sprintf("/slots/%s/chart.%s?%s", url.PathEscape(slot.ID), s.opts.Format, q.Encode())
}

func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", raw)
	}
	return page, nil
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownSlot):
		return http.StatusNotFound
	case errors.Is(err, figure.ErrEncodingMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnknownColumn),
		errors.Is(err, engine.ErrRequiredControl),
		errors.Is(err, engine.ErrUnknownControl):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", slog.Any("err", err))
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
