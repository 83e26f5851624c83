package schema

import (
	"errors"
	"testing"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

// Palmer penguins extract
var penguinsCSV = []byte(`species,island,bill_length_mm,bill_depth_mm,flipper_length_mm,body_mass_g,sex
Adelie,Torgersen,39.1,18.7,181,3750,Male
Adelie,Torgersen,39.5,17.4,186,3800,Female
Adelie,Torgersen,40.3,18.0,195,3250,Female
Adelie,Torgersen,,,,,
Adelie,Torgersen,36.7,19.3,193,3450,Female
Chinstrap,Dream,46.5,17.9,192,3500,Female
Chinstrap,Dream,50.0,19.5,196,3900,Male
Gentoo,Biscoe,46.1,13.2,211,4500,Female
Gentoo,Biscoe,50.0,16.3,230,5700,Male
Gentoo,Biscoe,48.7,14.1,210,4450,NA
`)

// Sample Jira CSV export
var jiraCSV = []byte(`Issue Key,Summary,Status,Priority,Story Points,Created,Sprint Month
PROJ-101,Login timeout on mobile,In Progress,P1,5,2026-01-15,Jan-2026
PROJ-102,Dashboard crash on Safari,To Do,P2,3,2026-01-16,Jan-2026
PROJ-103,Add dark mode toggle,Done,P3,8,2026-01-10,Jan-2026
PROJ-104,Update user docs,In Review,P4,2,2026-01-18,Jan-2026
PROJ-105,Payment fails with expired card,In Progress,P1,8,2026-01-12,Feb-2026
PROJ-106,Optimize DB queries,Done,P2,5,2026-01-08,Feb-2026
PROJ-107,Mobile push notifications,To Do,P2,13,2026-01-20,Feb-2026
PROJ-108,Fix memory leak in worker,In Progress,P1,5,2026-01-14,Feb-2026
PROJ-109,Redesign settings page,Done,P3,8,2026-01-05,Mar-2026
PROJ-110,API rate limiting,Done,P2,5,2026-01-09,Mar-2026
PROJ-111,Add export to CSV,To Do,P3,3,2026-01-22,Mar-2026
PROJ-112,Update SSL certs,Done,P1,1,2026-01-07,Mar-2026
`)

func TestDiscoverPenguinsCSV(t *testing.T) {
	config, err := DiscoverFromCSV(penguinsCSV, DiscoverOptions{Name: "penguins"})
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	if config.Name != "penguins" {
		t.Errorf("Name = %q, want penguins", config.Name)
	}
	if config.Rows != 10 {
		t.Errorf("Rows = %d, want 10", config.Rows)
	}

	want := []string{"species", "island", "bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "sex"}
	got := config.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("ColumnNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q (order must follow the header)", i, got[i], want[i])
		}
	}

	numeric := config.NumericColumns()
	assertContains(t, numeric, "bill_length_mm", "bill_length_mm should be numeric")
	assertContains(t, numeric, "body_mass_g", "body_mass_g should be numeric")

	categorical := config.CategoricalColumns()
	assertContains(t, categorical, "species", "species should be categorical")
	assertContains(t, categorical, "island", "island should be categorical")
	assertContains(t, categorical, "sex", "sex should be categorical")

	sex, ok := config.Column("sex")
	if !ok {
		t.Fatal("sex column missing")
	}
	if sex.NullCount != 2 {
		t.Errorf("sex NullCount = %d, want 2 (empty and NA)", sex.NullCount)
	}
	if sex.UniqueCount != 2 {
		t.Errorf("sex UniqueCount = %d, want 2", sex.UniqueCount)
	}

	bill, _ := config.Column("bill_length_mm")
	if bill.Role != RoleMeasure {
		t.Errorf("bill_length_mm role = %q, want measure", bill.Role)
	}
	if bill.DisplayName != "Bill Length Mm" {
		t.Errorf("bill_length_mm display name = %q", bill.DisplayName)
	}
}

func TestDiscoverJiraCSV(t *testing.T) {
	config, err := DiscoverFromCSV(jiraCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	key, _ := config.Column("Issue Key")
	if key.Role != RoleIdentifier {
		t.Errorf("Issue Key role = %q, want identifier", key.Role)
	}
	if key.Key != "issue_key" {
		t.Errorf("Issue Key key = %q, want issue_key", key.Key)
	}

	points, _ := config.Column("Story Points")
	if points.Kind != KindNumeric {
		t.Errorf("Story Points kind = %q, want numeric", points.Kind)
	}

	created, _ := config.Column("Created")
	if created.Kind != KindCategorical || !created.IsTemporal {
		t.Errorf("Created should be a temporal categorical column, got %+v", created)
	}

	month, _ := config.Column("Sprint Month")
	if !month.IsTemporal || month.TemporalFormat != "MMM-yyyy" {
		t.Errorf("Sprint Month temporal = %v (%q)", month.IsTemporal, month.TemporalFormat)
	}

	status, _ := config.Column("Status")
	if status.Role != RoleDimension || status.CardinalityHint != "low" {
		t.Errorf("Status should be a low-cardinality dimension, got %+v", status)
	}
}

func TestDiscoverMixedColumnIsCategorical(t *testing.T) {
	data := []byte("code\n1\n2\nthree\n4\n5\n")
	config, err := DiscoverFromCSV(data)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	if config.Columns[0].Kind != KindCategorical {
		t.Errorf("mixed column kind = %q, want categorical", config.Columns[0].Kind)
	}
}

func TestDiscoverCustomNullValues(t *testing.T) {
	data := []byte("score\n1.5\n-\n2.5\n")
	config, err := DiscoverFromCSV(data, DiscoverOptions{NullValues: []string{"-"}})
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	col := config.Columns[0]
	if col.Kind != KindNumeric || col.NullCount != 1 {
		t.Errorf("score = %+v, want numeric with one null", col)
	}
}

func TestDiscoverErrors(t *testing.T) {
	if _, err := DiscoverFromCSV(nil); !errors.Is(err, ErrNoColumns) {
		t.Errorf("empty input error = %v, want ErrNoColumns", err)
	}
	if _, err := DiscoverFromCSV([]byte("a,a\n1,2\n")); err == nil {
		t.Error("duplicate column names should be rejected")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{"-3.5", -3.5, true},
		{"1,234.56", 1234.56, true},
		{"$19.99", 19.99, true},
		{"-$5", -5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
		{"-Infinity", 0, false},
		{"NaN", 0, false},
		{"1e400", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDiscoverNonFiniteColumn(t *testing.T) {
	config, err := DiscoverFromCSV([]byte("v,g\n1,a\n2,a\n3,b\nInf,b\n"))
	if err != nil {
		t.Fatalf("DiscoverFromCSV: %v", err)
	}
	if config.Columns[0].Kind != KindCategorical {
		t.Errorf("column with Inf kind = %q, want categorical", config.Columns[0].Kind)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Story Points", "story_points"},
		{"Issue Key", "issue_key"},
		{"issueType", "issue_type"},
		{"StoryPoints", "story_points"},
		{"created_at", "created_at"},
		{"Sprint", "sprint"},
	}

	for _, tt := range tests {
		got := toSnakeCase(tt.input)
		if got != tt.expected {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"story_points", "Story Points"},
		{"Sprint", "Sprint"},
		{"Issue Type", "Issue Type"},
		{"body_mass_g", "Body Mass G"},
	}

	for _, tt := range tests {
		got := toDisplayName(tt.input)
		if got != tt.expected {
			t.Errorf("toDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTemporalDetection(t *testing.T) {
	tests := []struct {
		samples    []string
		isTemporal bool
	}{
		{[]string{"Jan-2026", "Feb-2026", "Mar-2026"}, true},
		{[]string{"2025-01", "2025-02", "2025-03"}, true},
		{[]string{"Q1-2026", "Q2-2026"}, true},
		{[]string{"Sprint 15", "Sprint 16", "Sprint 17"}, false},
		{[]string{"Torgersen", "Dream", "Biscoe"}, false},
	}

	for _, tt := range tests {
		got, _ := detectTemporalPattern(tt.samples)
		if got != tt.isTemporal {
			t.Errorf("detectTemporalPattern(%v) = %v, want %v", tt.samples, got, tt.isTemporal)
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			return
		}
	}
	t.Errorf("%s: %q not found in %v", msg, item, slice)
}
