package render_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/plotdash/dataset"
	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
	"github.com/spektr-org/plotdash/render"
)

func penguinFigure(t *testing.T, spec engine.ChartSpec) *figure.Figure {
	t.Helper()

	tbl, err := dataset.Penguins()
	require.NoError(t, err)

	fig, err := figure.Build(tbl, spec)
	require.NoError(t, err)

	return fig
}

func TestWrite(t *testing.T) {
	t.Parallel()

	specs := map[string]engine.ChartSpec{
		"box": {Type: engine.ChartBox, Title: "Boxplot", X: "species", Y: "body_mass_g",
			Color: "sex", Background: "#F3E9D2"},
		"box single": {Type: engine.ChartBox, X: "flipper_length_mm"},
		"scatter": {Type: engine.ChartScatter, X: "bill_length_mm", Y: "bill_depth_mm",
			Color: "island", Background: "#F3E9D2"},
		"scatter nominal": {Type: engine.ChartScatter, X: "species", Y: "island"},
		"scatter continuous": {Type: engine.ChartScatter, X: "bill_length_mm", Y: "bill_depth_mm",
			Color: "body_mass_g"},
		"histogram":       {Type: engine.ChartHistogram, X: "bill_depth_mm", Color: "species"},
		"histogram nominal": {Type: engine.ChartHistogram, X: "island", Color: "sex"},
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fig := penguinFigure(t, spec)

			var png bytes.Buffer
			require.NoError(t, render.Write(&png, fig, render.PNG, render.DefaultSize))
			assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")), "png signature")

			var svg bytes.Buffer
			require.NoError(t, render.Write(&svg, fig, render.SVG, render.Size{}))
			assert.Contains(t, svg.String(), "<svg")
		})
	}
}

func TestWriteErrors(t *testing.T) {
	t.Parallel()

	fig := penguinFigure(t, engine.ChartSpec{Type: engine.ChartHistogram, X: "species"})

	err := render.Write(&bytes.Buffer{}, fig, "gif", render.DefaultSize)
	require.ErrorIs(t, err, render.ErrUnknownFormat)

	fig.Background = "beige"
	err = render.Write(&bytes.Buffer{}, fig, render.PNG, render.DefaultSize)
	require.ErrorContains(t, err, `invalid color "beige"`)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := render.ParseFormat(".SVG")
	require.NoError(t, err)
	assert.Equal(t, render.SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = render.ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = render.ParseFormat("jpeg")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestPlotLegend(t *testing.T) {
	t.Parallel()

	fig := penguinFigure(t, engine.ChartSpec{Type: engine.ChartScatter, X: "bill_length_mm", Y: "body_mass_g", Color: "species"})

	p, err := render.Plot(fig)
	require.NoError(t, err)
	assert.Equal(t, "bill_length_mm", p.X.Label.Text)
	assert.Equal(t, "body_mass_g", p.Y.Label.Text)
	assert.Len(t, fig.Groups, 3)
}

func TestPlotColorScale(t *testing.T) {
	t.Parallel()

	fig := penguinFigure(t, engine.ChartSpec{
		Type: engine.ChartScatter, X: "bill_length_mm", Y: "bill_depth_mm", Color: "body_mass_g",
	})
	require.NotNil(t, fig.ColorScale)
	assert.False(t, fig.Legend())

	_, err := render.Plot(fig)
	require.NoError(t, err)

	fig.ColorScale.High = "orange"
	_, err = render.Plot(fig)
	require.Error(t, err)
}
