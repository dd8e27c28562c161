package obs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestInitLogger_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev); L = prev })

	var buf bytes.Buffer
	logger := InitLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "batch_id", "B1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "B1", rec["batch_id"])
}

func TestInitLogger_InvalidLevelWarns(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev); L = prev })

	var buf bytes.Buffer
	InitLogger("loud", &buf)
	assert.Contains(t, buf.String(), "invalid log level")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Commit("distribution", StatusOK, 4)
	m.Commit("distribution", StatusError, 4)
	m.Rollback("append")
	m.SetBuildInfo("v1.2.3", "abc")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commits.WithLabelValues("distribution", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commits.WithLabelValues("distribution", StatusError)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.LegsWritten.WithLabelValues("distribution")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rollbacks.WithLabelValues("append")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildInfo.WithLabelValues("v1.2.3", "abc")))

	n, err := testutil.GatherAndCount(reg, "equity_commits_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
