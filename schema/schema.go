package schema

// ============================================================================
// SCHEMA — Describes the columns of a dataset for the binder and the shell
// ============================================================================
// Auto-discovered from the loaded table. The binder uses Kind to decide how a
// column can be encoded; the shell uses DisplayName and SampleValues for the
// dropdowns and the `columns` command.
// ============================================================================

// Kind is the value type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Role is the suggested use of a column. Every column stays selectable; the
// role is a hint only.
type Role string

const (
	RoleMeasure    Role = "measure"    // continuous numeric values
	RoleDimension  Role = "dimension"  // groupable values
	RoleIdentifier Role = "identifier" // unique per row
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    int      `json:"rows"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
}

// Column describes one dataset column.
type Column struct {
	Name            string   `json:"name"` // header exactly as loaded
	Key             string   `json:"key"`  // snake_case form of Name
	DisplayName     string   `json:"displayName"`
	Kind            Kind     `json:"kind"`
	Role            Role     `json:"role"`
	IsTemporal      bool     `json:"isTemporal,omitempty"`
	TemporalFormat  string   `json:"temporalFormat,omitempty"`
	UniqueCount     int      `json:"uniqueCount"`
	NullCount       int      `json:"nullCount"`
	CardinalityHint string   `json:"cardinalityHint"` // "low", "medium", "high"
	SampleValues    []string `json:"sampleValues"`
}

// IsNumeric reports whether the column holds numbers.
func (c Column) IsNumeric() bool { return c.Kind == KindNumeric }

// ColumnNames returns every column name in dataset order.
func (c Config) ColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by its exact name.
func (c Config) Column(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// NumericColumns returns the names of all numeric columns.
func (c Config) NumericColumns() []string {
	var names []string
	for _, col := range c.Columns {
		if col.Kind == KindNumeric {
			names = append(names, col.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of all categorical columns.
func (c Config) CategoricalColumns() []string {
	var names []string
	for _, col := range c.Columns {
		if col.Kind == KindCategorical {
			names = append(names, col.Name)
		}
	}
	return names
}
