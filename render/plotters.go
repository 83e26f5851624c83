package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/plotdash/figure"
)

// ============================================================================
// PLOTTERS — Boxes and stacked bars drawn from precomputed figures
// ============================================================================
// gonum's own BoxPlot and Histogram recompute statistics from raw values, so
// these plotters draw the figure's numbers as they are.
// ============================================================================

// slotWidth is the share of one category position that its boxes occupy.
const slotWidth = 0.8

func addBoxes(p *plot.Plot, fig *figure.Figure, colors map[string]color.Color) {
	offset := make(map[string]int, len(fig.Groups))
	for i, g := range fig.Groups {
		offset[g.Name] = i
	}
	width := slotWidth / float64(max(len(fig.Groups), 1))

	for _, b := range fig.Boxes {
		center := float64(b.Position) - slotWidth/2 + width*(float64(offset[b.Group])+0.5)
		p.Add(&boxGlyph{box: b, center: center, width: width * 0.9, color: colors[b.Group]})
	}
}

// boxGlyph draws one box with whiskers and outliers.
type boxGlyph struct {
	box    figure.Box
	center float64
	width  float64
	color  color.Color
}

func (g *boxGlyph) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	left, right := trX(g.center-g.width/2), trX(g.center+g.width/2)
	mid := trX(g.center)
	q1, q3, med := trY(g.box.Q1), trY(g.box.Q3), trY(g.box.Median)

	rect := []vg.Point{{X: left, Y: q1}, {X: right, Y: q1}, {X: right, Y: q3}, {X: left, Y: q3}}
	c.FillPolygon(fade(g.color), c.ClipPolygonXY(rect))

	line := draw.LineStyle{Color: g.color, Width: vg.Points(1)}
	c.StrokeLines(line, c.ClipLinesXY(append(rect, rect[0]))...)
	c.StrokeLines(line, c.ClipLinesXY(
		[]vg.Point{{X: left, Y: med}, {X: right, Y: med}},
		[]vg.Point{{X: mid, Y: q1}, {X: mid, Y: trY(g.box.LowerWhisker)}},
		[]vg.Point{{X: mid, Y: q3}, {X: mid, Y: trY(g.box.UpperWhisker)}},
	)...)

	glyph := draw.GlyphStyle{Color: g.color, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
	for _, v := range g.box.Outliers {
		pt := vg.Point{X: mid, Y: trY(v)}
		if c.Contains(pt) {
			c.DrawGlyph(glyph, pt)
		}
	}
}

func (g *boxGlyph) DataRange() (xmin, xmax, ymin, ymax float64) {
	ymin, ymax = g.box.LowerWhisker, g.box.UpperWhisker
	for _, v := range g.box.Outliers {
		ymin, ymax = math.Min(ymin, v), math.Max(ymax, v)
	}
	return g.center - g.width/2, g.center + g.width/2, ymin, ymax
}

func addScatter(p *plot.Plot, fig *figure.Figure, colors map[string]color.Color) error {
	var shade *gradient
	if fig.ColorScale != nil {
		g, err := newGradient(fig.ColorScale)
		if err != nil {
			return err
		}
		shade = g
	}

	for _, s := range fig.Series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = colors[s.Group]
		sc.GlyphStyle.Radius = vg.Points(2.5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		if shade != nil && len(s.Values) == len(s.Points) {
			values := s.Values
			sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				gs := sc.GlyphStyle
				gs.Color = shade.at(values[i])
				return gs
			}
		}
		p.Add(sc)
	}
	return nil
}

// gradientSteps is the number of legend entries of a color scale.
const gradientSteps = 5

// gradient blends the ends of a color scale in Lab space.
type gradient struct {
	scale     *figure.ColorScale
	low, high colorful.Color
}

func newGradient(s *figure.ColorScale) (*gradient, error) {
	low, err := colorful.Hex(s.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s.Low, err)
	}
	high, err := colorful.Hex(s.High)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s.High, err)
	}
	return &gradient{scale: s, low: low, high: high}, nil
}

func (g *gradient) at(v float64) color.Color {
	return g.low.BlendLab(g.high, g.scale.Position(v)).Clamped()
}

// addGradientLegend lists evenly spaced values of the scale, highest first.
func addGradientLegend(p *plot.Plot, label string, g *gradient) {
	p.Legend.Add(label)
	for i := gradientSteps - 1; i >= 0; i-- {
		v := g.scale.Min + (g.scale.Max-g.scale.Min)*float64(i)/float64(gradientSteps-1)
		p.Legend.Add(strconv.FormatFloat(v, 'g', 4, 64), swatch{color: g.at(v)})
		if g.scale.Max <= g.scale.Min {
			break
		}
	}
}

func addHistogram(p *plot.Plot, fig *figure.Figure, colors map[string]color.Color) {
	h := fig.Histogram
	if h == nil {
		return
	}

	bins := h.Bins()
	lefts, rights := make([]float64, bins), make([]float64, bins)
	for i := range bins {
		if len(h.Edges) == bins+1 {
			lefts[i], rights[i] = h.Edges[i], h.Edges[i+1]
		} else {
			lefts[i], rights[i] = float64(i)-slotWidth/2, float64(i)+slotWidth/2
		}
	}

	base := make([]float64, bins)
	for _, gc := range h.Counts {
		bars := &stackedBars{lefts: lefts, rights: rights, base: append([]float64(nil), base...),
			counts: gc.Counts, color: colors[gc.Group]}
		p.Add(bars)
		for i, n := range gc.Counts {
			base[i] += float64(n)
		}
	}
}

// stackedBars draws one color group of a histogram on top of the groups
// drawn before it.
type stackedBars struct {
	lefts, rights []float64
	base          []float64
	counts        []int
	color         color.Color
}

func (b *stackedBars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	line := draw.LineStyle{Color: color.White, Width: vg.Points(0.5)}

	for i, n := range b.counts {
		if n == 0 {
			continue
		}
		l, r := trX(b.lefts[i]), trX(b.rights[i])
		bot, top := trY(b.base[i]), trY(b.base[i]+float64(n))
		rect := []vg.Point{{X: l, Y: bot}, {X: r, Y: bot}, {X: r, Y: top}, {X: l, Y: top}}
		c.FillPolygon(b.color, c.ClipPolygonXY(rect))
		c.StrokeLines(line, c.ClipLinesXY(append(rect, rect[0]))...)
	}
}

func (b *stackedBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(b.lefts) == 0 {
		return 0, 1, 0, 1
	}
	xmin, xmax = b.lefts[0], b.rights[len(b.rights)-1]
	for i, n := range b.counts {
		ymax = math.Max(ymax, b.base[i]+float64(n))
	}
	return xmin, xmax, 0, ymax
}

// swatch is the legend thumbnail of a color group.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

func fade(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0x66}
}
