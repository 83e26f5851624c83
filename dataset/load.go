package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/plotdash/schema"
)

// ============================================================================
// LOADER — Parses CSV data into an immutable Table
// ============================================================================
// The caller reads the CSV from wherever it lives. The loader only needs a
// header row; column types come from schema discovery.
// ============================================================================

//go:embed penguins.csv
var penguinsCSV []byte

// PenguinsName is the name of the embedded sample dataset.
const PenguinsName = "penguins"

// Option configures loading.
type Option func(*loadConfig)

type loadConfig struct {
	Name       string
	NullValues []string
}

// WithName sets the dataset name.
func WithName(name string) Option {
	return func(c *loadConfig) {
		c.Name = name
	}
}

// WithNullValues adds cell values treated as missing on top of
// schema.DefaultNullValues.
func WithNullValues(values ...string) Option {
	return func(c *loadConfig) {
		c.NullValues = append(c.NullValues, values...)
	}
}

func applyOptions(opts []Option) *loadConfig {
	cfg := &loadConfig{Name: "dataset"}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New builds a Table from a header and rows.
func New(headers []string, rows [][]string, opts ...Option) (*Table, error) {
	cfg := applyOptions(opts)

	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	sch, err := schema.Discover(trimmed, rows, schema.DiscoverOptions{
		NullValues: cfg.NullValues,
		Name:       cfg.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover columns: %w", err)
	}

	return newTable(cfg.Name, trimmed, rows, sch, schema.NullSet(cfg.NullValues)), nil
}

// Load parses CSV with a header row into a Table.
func Load(r io.Reader, opts ...Option) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, schema.ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}

	return New(headers, rows, opts...)
}

// LoadFile loads a CSV file. The dataset name defaults to the file name
// without extension.
func LoadFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(f, append([]Option{WithName(name)}, opts...)...)
}

// Penguins returns the embedded Palmer penguins sample.
func Penguins(opts ...Option) (*Table, error) {
	return Load(bytes.NewReader(penguinsCSV), append([]Option{WithName(PenguinsName)}, opts...)...)
}

func trimCell(s string) string { return strings.TrimSpace(s) }
