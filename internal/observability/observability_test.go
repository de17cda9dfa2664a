package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("csv loaded", "markers", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "csv loaded", entry["msg"])
	assert.EqualValues(t, 3, entry["markers"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "DEBUG", "text")

	logger.Debug("reload requested")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "reload requested")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Loads.WithLabelValues("success").Inc()
	a.HeatPoints.Set(12)

	assert.InDelta(t, 1, testutil.ToFloat64(a.Loads.WithLabelValues("success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Loads.WithLabelValues("success")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(a.HeatPoints), 0)
}
