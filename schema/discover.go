package schema

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic column classification
// ============================================================================
// Inspects raw rows and describes every column. Unlike a query schema, no
// column is ever dropped: each one is a valid dropdown value.
//
// Classification pipeline per column:
//   1. Null detection → missing cells are counted, never typed
//   2. Type detection → numeric when every non-null cell parses as a number
//   3. Pattern matching → temporal columns (dates, months, quarters)
//   4. Type + cardinality → suggested role (measure, dimension, identifier)
// ============================================================================

// ErrNoColumns is returned when the input has no header.
var ErrNoColumns = errors.New("dataset has no columns")

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int      // Max rows to inspect (0 = all)
	NullValues []string // Extra cell values treated as missing
	Name       string   // Dataset name override
}

// DefaultNullValues are the cell values treated as missing in every dataset.
var DefaultNullValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None"}

// DiscoverFromCSV generates a Config by inspecting CSV data with a header row.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoColumns
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

	config, err := Discover(headers, rows, opts...)
	if err != nil {
		return nil, err
	}
	config.DiscoveredFrom = "CSV"
	return config, nil
}

// Discover describes the columns of an already-split table.
func Discover(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	var opt DiscoverOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	if len(headers) == 0 {
		return nil, ErrNoColumns
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return nil, fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = true
	}

	sample := rows
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	nulls := NullSet(opt.NullValues)

	config := &Config{
		Name:         opt.Name,
		Rows:         len(rows),
		DiscoveredAt: time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	config.Columns = make([]Column, len(headers))
	for i, header := range headers {
		config.Columns[i] = analyzeColumn(header, i, sample, nulls)
	}

	return config, nil
}

// NullSet builds the lookup set of missing-value markers.
func NullSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(DefaultNullValues)+len(extra))
	for _, v := range DefaultNullValues {
		set[v] = true
	}
	for _, v := range extra {
		set[strings.TrimSpace(v)] = true
	}
	return set
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(header string, index int, rows [][]string, nulls map[string]bool) Column {
	col := Column{
		Name:        header,
		Key:         toSnakeCase(header),
		DisplayName: toDisplayName(header),
		Kind:        KindCategorical,
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)

	for _, row := range rows {
		if index >= len(row) {
			col.NullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		if nulls[val] {
			col.NullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.UniqueCount = len(uniqueSet)
	col.SampleValues = collectSamples(uniqueSet, 10)

	switch {
	case col.UniqueCount <= 10:
		col.CardinalityHint = "low"
	case col.UniqueCount <= 100:
		col.CardinalityHint = "medium"
	default:
		col.CardinalityHint = "high"
	}

	if len(values) == 0 {
		col.Role = RoleDimension
		return col
	}

	colType := detectType(values)
	if colType == typeNumeric {
		col.Kind = KindNumeric
	}

	if colType == typeDate || colType == typeString {
		col.IsTemporal, col.TemporalFormat = detectTemporalPattern(col.SampleValues)
	}
	if colType == typeDate {
		col.IsTemporal = true
	}

	col.Role = classifyRole(colType, values, col.UniqueCount, len(rows))
	return col
}

// classifyRole suggests measure vs dimension vs identifier.
func classifyRole(colType columnType, values []string, uniqueCount, totalRows int) Role {
	switch colType {
	case typeNumeric:
		for _, v := range values {
			if strings.Contains(v, ".") {
				return RoleMeasure
			}
		}
		if uniqueCount == totalRows && totalRows > 10 {
			return RoleIdentifier
		}
		// Few distinct integers relative to the row count look like codes (1-5 ratings).
		uniqueRatio := float64(uniqueCount) / float64(totalRows)
		if uniqueCount < 20 && uniqueRatio < 0.3 {
			return RoleDimension
		}
		return RoleMeasure

	case typeString:
		if uniqueCount == totalRows && totalRows > 10 {
			return RoleIdentifier
		}
		return RoleDimension

	default:
		return RoleDimension
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects non-null values to determine column type.
// Numeric requires every value to parse so that no cell is silently lost;
// date and bool need 80%.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if _, ok := ParseNumber(v); ok {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	if boolCount >= threshold && boolCount > 0 && numCount < len(values) {
		return typeBool
	}
	if dateCount >= threshold && dateCount > 0 && numCount < len(values) {
		return typeDate
	}
	if numCount == len(values) {
		return typeNumeric
	}
	return typeString
}

// ParseNumber parses a numeric cell, tolerating thousands separators and a
// leading currency symbol.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no"
}

var monthPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"}, // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},          // 2026-01
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},         // Q1-2026
	{regexp.MustCompile(`^Q[1-4]\s+\d{4}$`), "QN yyyy"},       // Q1 2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},  // January 2026
}

// detectTemporalPattern checks if values match known month/quarter patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}

	for _, pattern := range monthPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}

	return false, ""
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

var titleCaser = cases.Title(language.English)

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	return strcase.ToSnake(strings.TrimSpace(s))
}

// toDisplayName cleans a header for human display.
// "bill_length_mm" → "Bill Length Mm", "Issue Type" → "Issue Type"
func toDisplayName(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ") {
		return s
	}
	return titleCaser.String(strcase.ToDelimited(s, ' '))
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
