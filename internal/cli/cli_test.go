package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/internal/cli"
	"github.com/spektr-org/plotdash/schema"
)

const bills = `species,island,bill_length_mm,bill_depth_mm
Adelie,Torgersen,39.1,18.7
Adelie,Biscoe,39.5,17.4
Gentoo,Biscoe,46.1,13.2
Gentoo,Biscoe,50.0,16.3
Chinstrap,Dream,46.5,17.9
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	tc := cli.NewRootCmd("test", "", "")
	stdout := bytes.NewBufferString("")
	stderr := bytes.NewBufferString("")

	tc.SetArgs(args)
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	return stdout.String(), err
}

func writeBills(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bills.csv")
	require.NoError(t, os.WriteFile(path, []byte(bills), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `\d+\.\d+\.\d+`, out)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, err := run(t, "version", "--log_level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log handler")
}

func TestColumns(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "columns", "--data", writeBills(t), "--output", "json")
		require.NoError(t, err)

		var sch schema.Config
		require.NoError(t, json.Unmarshal([]byte(out), &sch))
		assert.Equal(t, 5, sch.Rows)
		assert.Equal(t, []string{"species", "island", "bill_length_mm", "bill_depth_mm"}, sch.ColumnNames())
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "columns", "--data", writeBills(t))
		require.NoError(t, err)
		assert.Contains(t, out, "5 rows")
		assert.Contains(t, out, "bill_depth_mm")
		assert.Contains(t, out, "numeric")
	})

	t.Run("invalid output", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, "columns", "--data", writeBills(t), "--output", "xml")
		require.Error(t, err)
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("scatter defaults", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "scatter.png")
		_, err := run(t, "render", "scatter", "--data", writeBills(t), "--out", out)
		require.NoError(t, err)

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), b[:4])
	})

	t.Run("svg to stdout", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "render", "hist", "--data", writeBills(t),
			"--x", "bill_length_mm", "--color", "", "--format", "svg", "--out", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "<svg")
	})

	t.Run("unknown slot", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, "render", "pie", "--data", writeBills(t), "--out", "-")
		require.ErrorIs(t, err, engine.ErrUnknownSlot)
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, "render", "scatter", "--data", writeBills(t), "--x", "wingspan", "--out", "-")
		require.ErrorIs(t, err, engine.ErrUnknownColumn)
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("schema", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "config", "schema")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Contains(t, doc, "properties")
	})

	t.Run("show", func(t *testing.T) {
		t.Parallel()

		path := writeBills(t)
		out, err := run(t, "config", "show", "--data", path)
		require.NoError(t, err)
		assert.Contains(t, out, path)
		assert.Contains(t, out, "[server]")
	})
}
