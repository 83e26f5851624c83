// Package render draws figures with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
)

// ============================================================================
// RENDER — Figure → PNG / SVG
// ============================================================================

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ErrUnknownFormat is returned for formats other than png and svg.
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat accepts "png" and "svg" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case PNG, SVG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Size is the image size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize matches a dashboard chart container.
var DefaultSize = Size{Width: 6 * vg.Inch, Height: 4 * vg.Inch}

// Write draws fig to w.
func Write(w io.Writer, fig *figure.Figure, format Format, size Size) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	p, err := Plot(fig)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(size.Width, size.Height, string(format))
	if err != nil {
		return fmt.Errorf("failed to create plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// Plot builds the gonum plot of a figure.
func Plot(fig *figure.Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Legend.Top = true

	if fig.Background != "" {
		bg, err := ParseColor(fig.Background)
		if err != nil {
			return nil, err
		}
		p.BackgroundColor = bg
	}

	colors := make(map[string]color.Color, len(fig.Groups))
	for _, g := range fig.Groups {
		c, err := ParseColor(g.Color)
		if err != nil {
			return nil, err
		}
		colors[g.Name] = c
	}

	p.Add(plotter.NewGrid())

	switch fig.Type {
	case engine.ChartBox:
		addBoxes(p, fig, colors)
	case engine.ChartScatter:
		if err := addScatter(p, fig, colors); err != nil {
			return nil, err
		}
	case engine.ChartHistogram:
		addHistogram(p, fig, colors)
	default:
		return nil, fmt.Errorf("cannot draw chart type %q", fig.Type)
	}

	if len(fig.XCategories) > 0 {
		p.NominalX(fig.XCategories...)
		p.X.Label.Text = fig.XLabel
	}
	if len(fig.YCategories) > 0 {
		p.NominalY(fig.YCategories...)
		p.Y.Label.Text = fig.YLabel
	}

	if fig.Legend() {
		for _, g := range fig.Groups {
			p.Legend.Add(g.Name, swatch{color: colors[g.Name]})
		}
	}
	if fig.ColorScale != nil {
		g, err := newGradient(fig.ColorScale)
		if err != nil {
			return nil, err
		}
		addGradientLegend(p, fig.ColorLabel, g)
	}

	return p, nil
}

// ParseColor parses a hex color like "#F3E9D2".
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}
