package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/discuss/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &data), "line %q", line)
		out = append(out, data)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := NewLogger(cfg)

	require.NotNil(t, logger)
	assert.NotNil(t, logger.Slog())
}

func TestLogger_FiltersByLevel(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"DEBUG", 4},
		{"INFO", 3},
		{"WARN", 2},
		{"ERROR", 1},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, tt.level)

			plain := logger.Slog()
			plain.Debug("debug")
			logger.Info("info")
			plain.Warn("warn")
			logger.Error("error")

			assert.Len(t, decodeLines(t, &buf), tt.want)
		})
	}
}

func TestLogger_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG")

	ctx := WithCorrelationID(context.Background(), "corr-123")
	logger.InfoContext(ctx, "with id", "file", "a.txt")
	logger.InfoContext(context.Background(), "without id")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "corr-123", lines[0]["correlation_id"])
	assert.Equal(t, "a.txt", lines[0]["file"])
	assert.NotContains(t, lines[1], "correlation_id")
}

func TestLogger_CorrelationIDReachesPlainSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	// Packages that take a *slog.Logger still get the id.
	plain := logger.Slog().With("component", "loop")
	plain.WarnContext(WithCorrelationID(context.Background(), "abc"), "slow host")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "abc", lines[0]["correlation_id"])
	assert.Equal(t, "loop", lines[0]["component"])
}

func TestCorrelationID_NotSet(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, CorrelationID(ctx))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "discuss.log")
	cfg := config.NewAppConfigWithOptions(config.WithLogFile(path))

	logger, closer, err := NewFileLogger(cfg)
	require.NoError(t, err)

	logger.Info("first")
	require.NoError(t, closer.Close())

	logger, closer, err = NewFileLogger(cfg)
	require.NoError(t, err)
	logger.Info("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "first")
	assert.Contains(t, text, "second")
	assert.NotContains(t, text, ansiReset, "file output is not coloured")
}

func TestNewFileLogger_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg := config.NewAppConfigWithOptions(config.WithLogFile(filepath.Join(blocker, "discuss.log")))

	_, _, err := NewFileLogger(cfg)
	assert.Error(t, err)
}

func TestConfigure(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefaultLogger(prev) })

	logger := Configure(config.NewAppConfigWithOptions(config.WithLogFormat(config.LogFormatJSON)))

	assert.Same(t, logger, Default())
}
