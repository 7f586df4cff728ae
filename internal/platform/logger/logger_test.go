package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"upper case", "WARN", slog.LevelWarn, true},
		{"padded", " error ", slog.LevelError, true},
		{"info", "info", slog.LevelInfo, true},
		{"unknown", "verbose", slog.LevelInfo, false},
		{"empty", "", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l := setup(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default(), "Setup installs the logger as default")

	l.Info("filtered out")
	l.Warn("kept", "kind", "quiz")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "quiz", entries[0]["kind"])
}

func TestSetup_ReturnsLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l := setup(config.ServerConfig{LogLevel: "chatty"}, &TestLogBuffer{})
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}

func TestFromContext(t *testing.T) {
	custom, buf := GetTestLogger(t)

	ctx := WithLogger(context.Background(), custom)
	FromContext(ctx).Info("from context", "request_id", "abc")
	AssertLogField(t, buf, "request_id", "abc")

	assert.Same(t, slog.Default(), FromContext(context.Background()))

	unchanged := context.Background()
	assert.Equal(t, unchanged, WithLogger(unchanged, nil))
}
