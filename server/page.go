package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title      string
	Style      template.CSS
	Table      *engine.TableData
	CellClass  []string
	PageNumber int
	HasPrev    bool
	HasNext    bool
	Slots      []slotView
}

type slotView struct {
	ID       string
	Title    string
	Controls []controlView
	Image    string
	Error    string
}

type controlView struct {
	ID       string
	Label    string
	Optional bool
	Empty    bool
	Options  []optionView
}

type optionView struct {
	Value    string
	Selected bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.page(page)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, fmt.Errorf("render page: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// page assembles the dashboard at its default selections.
func (s *Server) page(page int) (*pageData, error) {
	table := s.binder.Table(page)
	theme := s.opts.Theme

	data := &pageData{
		Title: table.Title,
		Style: template.CSS(fmt.Sprintf(
			":root { --bg: %s; --header: %s; --text: %s; --font: %q; }",
			theme.Background, theme.Header, theme.Text, theme.Font,
		)),
		Table:      table,
		PageNumber: table.Page + 1,
		HasPrev:    table.Page > 0,
		HasNext:    table.Page < table.PageCount-1,
	}
	for _, c := range table.Columns {
		data.CellClass = append(data.CellClass, c.Type)
	}

	columns := s.binder.Dataset().ColumnNames()
	for _, slot := range s.binder.Slots() {
		sel, err := s.binder.Defaults(slot.ID)
		if err != nil {
			return nil, err
		}
		spec, err := s.binder.Render(slot.ID, sel)
		if err != nil {
			return nil, err
		}

		view := slotView{ID: slot.ID, Title: slot.Title}
		for _, c := range slot.Controls {
			current := sel.Get(c.Role).Name()
			label := c.Label
			if label == "" {
				label = string(c.Role)
			}

			cv := controlView{ID: c.ID, Label: label, Optional: c.Optional, Empty: current == ""}
			for _, name := range columns {
				cv.Options = append(cv.Options, optionView{Value: name, Selected: name == current})
			}
			view.Controls = append(view.Controls, cv)
		}

		if _, err := figure.Build(s.binder.Dataset(), spec, s.opts.FigureOptions...); err != nil {
			view.Error = err.Error()
		} else {
			view.Image = s.chartURL(spec)
		}
		data.Slots = append(data.Slots, view)
	}

	return data, nil
}
