package engine

import (
	"io"
	"log/slog"
)

// ============================================================================
// BINDER OPTIONS — Functional options for New()
// ============================================================================

// Option configures binder behavior via functional options pattern.
type Option func(*config)

type config struct {
	Background string // plot background applied to every spec
	PageSize   int    // rows per table page
	Logger     *slog.Logger
}

// WithBackground sets the plot background color (e.g. "#F3E9D2").
func WithBackground(color string) Option {
	return func(c *config) {
		c.Background = color
	}
}

// WithPageSize sets the number of rows per table page.
func WithPageSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.PageSize = n
		}
	}
}

// WithLogger sets the logger used for recompute events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		PageSize: 10,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
