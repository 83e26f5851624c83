// Package config provides dashboard configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/plotdash/dataset"
	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
	"github.com/spektr-org/plotdash/render"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config represents the dashboard configuration file.
type Config struct {
	Dataset DatasetConfig `toml:"dataset" yaml:"dataset" json:"dataset"`
	Server  ServerConfig  `toml:"server" yaml:"server" json:"server"`
	Theme   ThemeConfig   `toml:"theme" yaml:"theme" json:"theme"`
	Table   TableConfig   `toml:"table" yaml:"table" json:"table"`
	Render  RenderConfig  `toml:"render" yaml:"render" json:"render"`
	Slots   []SlotConfig  `toml:"slots" yaml:"slots" json:"slots,omitempty" jsonschema:"description=Chart slots. The three-chart dashboard is used when empty."`
}

// DatasetConfig selects the data shown by the dashboard.
type DatasetConfig struct {
	Path       string   `toml:"path" yaml:"path" json:"path,omitempty" jsonschema:"description=CSV file with a header row. The embedded penguins sample is used when empty."`
	Name       string   `toml:"name" yaml:"name" json:"name,omitempty" jsonschema:"description=Dataset name shown as the table title."`
	NullValues []string `toml:"null_values" yaml:"null_values" json:"null_values,omitempty" jsonschema:"description=Extra cell values treated as missing."`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string `toml:"addr" yaml:"addr" json:"addr,omitempty" jsonschema:"default=:8050"`
	ShutdownTimeout string `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout,omitempty" jsonschema:"default=5s"`
}

// ShutdownDuration parses the shutdown timeout, falling back to 5s.
func (s ServerConfig) ShutdownDuration() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ThemeConfig contains the dashboard colors and font.
type ThemeConfig struct {
	Background string `toml:"background" yaml:"background" json:"background,omitempty" jsonschema:"default=#F3E9D2"`
	Header     string `toml:"header" yaml:"header" json:"header,omitempty" jsonschema:"default=#F7D6BF"`
	Text       string `toml:"text" yaml:"text" json:"text,omitempty" jsonschema:"default=#283044"`
	Font       string `toml:"font" yaml:"font" json:"font,omitempty" jsonschema:"default=Poppins"`
}

// TableConfig contains data table settings.
type TableConfig struct {
	PageSize int `toml:"page_size" yaml:"page_size" json:"page_size,omitempty" jsonschema:"default=10,minimum=1"`
}

// RenderConfig contains chart rendering settings.
type RenderConfig struct {
	Format         string   `toml:"format" yaml:"format" json:"format,omitempty" jsonschema:"enum=png,enum=svg,default=png"`
	Width          float64  `toml:"width" yaml:"width" json:"width,omitempty" jsonschema:"description=Image width in inches.,default=6"`
	Height         float64  `toml:"height" yaml:"height" json:"height,omitempty" jsonschema:"description=Image height in inches.,default=4"`
	Bins           int      `toml:"bins" yaml:"bins" json:"bins,omitempty" jsonschema:"description=Histogram bin count. Zero uses Sturges' rule."`
	MaxColorGroups int      `toml:"max_color_groups" yaml:"max_color_groups" json:"max_color_groups,omitempty" jsonschema:"default=24"`
	Palette        []string `toml:"palette" yaml:"palette" json:"palette,omitempty"`
	ColorScale     []string `toml:"color_scale" yaml:"color_scale" json:"color_scale,omitempty" jsonschema:"description=Low and high colors of a numeric color column on scatter charts.,minItems=2,maxItems=2"`
}

// SlotConfig declares one chart.
type SlotConfig struct {
	ID       string          `toml:"id" yaml:"id" json:"id"`
	Type     string          `toml:"type" yaml:"type" json:"type" jsonschema:"enum=box,enum=scatter,enum=histogram"`
	Title    string          `toml:"title" yaml:"title" json:"title,omitempty"`
	Controls []ControlConfig `toml:"controls" yaml:"controls" json:"controls"`
}

// ControlConfig declares one dropdown of a slot.
type ControlConfig struct {
	ID       string `toml:"id" yaml:"id" json:"id"`
	Role     string `toml:"role" yaml:"role" json:"role" jsonschema:"enum=x,enum=y,enum=color"`
	Label    string `toml:"label" yaml:"label" json:"label,omitempty"`
	Default  string `toml:"default" yaml:"default" json:"default,omitempty" jsonschema:"description=Column name, first, second, last, none or a position (negative counts from the end)."`
	Optional bool   `toml:"optional" yaml:"optional" json:"optional,omitempty"`
}

// Default reproduces the classic dashboard: penguins, three charts, the
// beige theme and ten rows per page.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8050"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "5s"
	}
	if c.Theme.Background == "" {
		c.Theme.Background = "#F3E9D2"
	}
	if c.Theme.Header == "" {
		c.Theme.Header = "#F7D6BF"
	}
	if c.Theme.Text == "" {
		c.Theme.Text = "#283044"
	}
	if c.Theme.Font == "" {
		c.Theme.Font = "Poppins"
	}
	if c.Table.PageSize == 0 {
		c.Table.PageSize = 10
	}
	if c.Render.Format == "" {
		c.Render.Format = string(render.PNG)
	}
	if c.Render.Width == 0 {
		c.Render.Width = 6
	}
	if c.Render.Height == 0 {
		c.Render.Height = 4
	}
	if c.Render.MaxColorGroups == 0 {
		c.Render.MaxColorGroups = figure.DefaultMaxColorGroups
	}
	if len(c.Slots) == 0 {
		c.Slots = FromSlots(engine.DefaultSlots())
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) configuration file, fills
// in defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate reports every problem of the configuration. Column defaults are
// checked later, against the dataset.
func (c *Config) Validate() error {
	var merr *multierror.Error

	for name, hex := range map[string]string{
		"theme.background": c.Theme.Background,
		"theme.header":     c.Theme.Header,
		"theme.text":       c.Theme.Text,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: invalid color %q", name, hex))
		}
	}
	for i, hex := range c.Render.Palette {
		if _, err := colorful.Hex(hex); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("render.palette[%d]: invalid color %q", i, hex))
		}
	}

	switch len(c.Render.ColorScale) {
	case 0:
	case 2:
		for i, hex := range c.Render.ColorScale {
			if _, err := colorful.Hex(hex); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("render.color_scale[%d]: invalid color %q", i, hex))
			}
		}
	default:
		merr = multierror.Append(merr, fmt.Errorf("render.color_scale must hold a low and a high color, got %d", len(c.Render.ColorScale)))
	}

	if c.Table.PageSize < 1 {
		merr = multierror.Append(merr, fmt.Errorf("table.page_size must be > 0, got %d", c.Table.PageSize))
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("render.format: %w", err))
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		merr = multierror.Append(merr, errors.New("render.width and render.height must not be negative"))
	}
	if c.Render.Bins < 0 {
		merr = multierror.Append(merr, fmt.Errorf("render.bins must not be negative, got %d", c.Render.Bins))
	}
	if c.Render.MaxColorGroups < 0 {
		merr = multierror.Append(merr, fmt.Errorf("render.max_color_groups must not be negative, got %d", c.Render.MaxColorGroups))
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("server.shutdown_timeout: %w", err))
	}

	slotIDs := make(map[string]bool)
	controlIDs := make(map[string]bool)
	for i, s := range c.Slots {
		if s.ID == "" {
			merr = multierror.Append(merr, fmt.Errorf("slots[%d]: missing id", i))
		} else if slotIDs[s.ID] {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: duplicate id", s.ID))
		}
		slotIDs[s.ID] = true

		if !engine.ChartType(s.Type).Valid() {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: invalid type %q", s.ID, s.Type))
		}
		if len(s.Controls) == 0 {
			merr = multierror.Append(merr, fmt.Errorf("slot %q: no controls", s.ID))
		}

		for j, ctl := range s.Controls {
			if ctl.ID == "" {
				merr = multierror.Append(merr, fmt.Errorf("slot %q: controls[%d]: missing id", s.ID, j))
			} else if controlIDs[ctl.ID] {
				merr = multierror.Append(merr, fmt.Errorf("control %q: duplicate id", ctl.ID))
			}
			controlIDs[ctl.ID] = true

			switch engine.Role(ctl.Role) {
			case engine.RoleX, engine.RoleY, engine.RoleColor:
			default:
				merr = multierror.Append(merr, fmt.Errorf("control %q: invalid role %q", ctl.ID, ctl.Role))
			}
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ============================================================================
// CONVERSIONS
// ============================================================================

// ToSlots converts the slot declarations to the engine slot table.
func (c *Config) ToSlots() []engine.Slot {
	slots := make([]engine.Slot, 0, len(c.Slots))
	for _, s := range c.Slots {
		slot := engine.Slot{ID: s.ID, Type: engine.ChartType(s.Type), Title: s.Title}
		for _, ctl := range s.Controls {
			slot.Controls = append(slot.Controls, engine.ControlSpec{
				ID:       ctl.ID,
				Role:     engine.Role(ctl.Role),
				Label:    ctl.Label,
				Default:  engine.DefaultRef(ctl.Default),
				Optional: ctl.Optional,
			})
		}
		slots = append(slots, slot)
	}
	return slots
}

// FromSlots converts an engine slot table to slot declarations.
func FromSlots(slots []engine.Slot) []SlotConfig {
	out := make([]SlotConfig, 0, len(slots))
	for _, s := range slots {
		sc := SlotConfig{ID: s.ID, Type: string(s.Type), Title: s.Title}
		for _, ctl := range s.Controls {
			sc.Controls = append(sc.Controls, ControlConfig{
				ID:       ctl.ID,
				Role:     string(ctl.Role),
				Label:    ctl.Label,
				Default:  string(ctl.Default),
				Optional: ctl.Optional,
			})
		}
		out = append(out, sc)
	}
	return out
}

// LoadDataset loads the configured dataset, or the embedded penguins sample.
func (c *Config) LoadDataset() (*dataset.Table, error) {
	var opts []dataset.Option
	if c.Dataset.Name != "" {
		opts = append(opts, dataset.WithName(c.Dataset.Name))
	}
	if len(c.Dataset.NullValues) > 0 {
		opts = append(opts, dataset.WithNullValues(c.Dataset.NullValues...))
	}

	if c.Dataset.Path == "" {
		return dataset.Penguins(opts...)
	}
	return dataset.LoadFile(c.Dataset.Path, opts...)
}

// EngineOptions returns the binder options of the configuration.
func (c *Config) EngineOptions(logger *slog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithBackground(c.Theme.Background),
		engine.WithPageSize(c.Table.PageSize),
		engine.WithLogger(logger),
	}
}

// FigureOptions returns the figure options of the configuration.
func (c *Config) FigureOptions() []figure.Option {
	opts := []figure.Option{
		figure.WithBins(c.Render.Bins),
		figure.WithMaxColorGroups(c.Render.MaxColorGroups),
		figure.WithPalette(c.Render.Palette...),
	}
	if len(c.Render.ColorScale) == 2 {
		opts = append(opts, figure.WithColorScale(c.Render.ColorScale[0], c.Render.ColorScale[1]))
	}
	return opts
}

// ImageSize returns the configured image size.
func (c *Config) ImageSize() render.Size {
	return render.Size{
		Width:  vg.Length(c.Render.Width) * vg.Inch,
		Height: vg.Length(c.Render.Height) * vg.Inch,
	}
}

// ImageFormat returns the configured image format, defaulting to PNG.
func (c *Config) ImageFormat() render.Format {
	f, err := render.ParseFormat(c.Render.Format)
	if err != nil {
		return render.PNG
	}
	return f
}
