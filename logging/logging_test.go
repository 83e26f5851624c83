package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/plotdash/logging"
)

func TestCreateHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		format string
		check  func(t *testing.T, out string)
	}{
		"json": {
			format: "json",
			check: func(t *testing.T, out string) {
				t.Helper()

				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(out), &rec))
				assert.Equal(t, "slot recomputed", rec["msg"])
				assert.Equal(t, "box", rec["slot"])
			},
		},
		"text": {
			format: "text",
			check: func(t *testing.T, out string) {
				t.Helper()

				assert.Contains(t, out, "slot recomputed")
				assert.Contains(t, out, "slot=box")
				assert.NotContains(t, out, "\x1b[", "no color outside a terminal")
			},
		},
		"logfmt": {
			format: "logfmt",
			check: func(t *testing.T, out string) {
				t.Helper()

				assert.Contains(t, out, `msg="slot recomputed"`)
				assert.Contains(t, out, "slot=box")
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			h, err := logging.CreateHandler(&buf, "info", tc.format)
			require.NoError(t, err)

			logger := slog.New(h)
			logger.Debug("hidden")
			logger.Info("slot recomputed", slog.String("slot", "box"))

			assert.NotContains(t, buf.String(), "hidden")
			tc.check(t, buf.String())
		})
	}
}

func TestCreateHandlerErrors(t *testing.T) {
	t.Parallel()

	_, err := logging.CreateHandler(&bytes.Buffer{}, "loud", "text")
	require.ErrorIs(t, err, logging.ErrUnknownLevel)

	_, err = logging.CreateHandler(&bytes.Buffer{}, "info", "xml")
	require.ErrorIs(t, err, logging.ErrUnknownFormat)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, logging.IsTerminal(&bytes.Buffer{}))
}
