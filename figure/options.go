package figure

// ============================================================================
// FIGURE OPTIONS — Functional options for Build()
// ============================================================================

// DefaultPalette colors the groups of a figure, cycling when exhausted.
var DefaultPalette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// DefaultColorScale is the gradient of a numeric color column on scatter
// charts, from the lowest value to the highest.
var DefaultColorScale = [2]string{"#0D0887", "#F0F921"}

// DefaultMaxColorGroups caps the distinct values of a color encoding.
const DefaultMaxColorGroups = 24

// Option configures figure computation.
type Option func(*config)

type config struct {
	Bins           int // 0 = Sturges' rule
	MaxColorGroups int
	Palette        []string
	ColorScale     [2]string
}

// WithBins sets a fixed histogram bin count. Zero or less means Sturges' rule.
func WithBins(n int) Option {
	return func(c *config) {
		c.Bins = max(n, 0)
	}
}

// WithMaxColorGroups caps the number of color groups.
func WithMaxColorGroups(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxColorGroups = n
		}
	}
}

// WithPalette sets the group colors (hex strings like "#4F46E5").
func WithPalette(colors ...string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithColorScale sets the gradient ends of a numeric color column. Empty
// values keep the defaults.
func WithColorScale(low, high string) Option {
	return func(c *config) {
		if low != "" {
			c.ColorScale[0] = low
		}
		if high != "" {
			c.ColorScale[1] = high
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		MaxColorGroups: DefaultMaxColorGroups,
		Palette:        DefaultPalette,
		ColorScale:     DefaultColorScale,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
