package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIHandler_AddsMetadata(t *testing.T) {
	t.Setenv("GITHUB_WORKFLOW", "ci")
	t.Setenv("GITHUB_RUN_ID", "1234")
	t.Setenv("GITHUB_SHA", "")

	buf := &TestLogBuffer{}
	l := slog.New(NewCIHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}))
	l.With("component", "generation").Debug("attempt failed", "attempt", 1)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "ci", entry["ci_workflow"])
	assert.Equal(t, "1234", entry["ci_run_id"])
	assert.NotContains(t, entry, "ci_commit")
	assert.Equal(t, "generation", entry["component"])
	assert.Contains(t, entry["source_file"], "ci_handler_test.go")
	assert.NotContains(t, entry, "source", "source is flattened into source_* attributes")
}

func TestCIHandler_RespectsLevel(t *testing.T) {
	buf := &TestLogBuffer{}
	l := slog.New(NewCIHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("dropped")
	l.WithGroup("req").Error("kept", "id", "x")

	AssertLogContains(t, buf, `"req":{"id":"x"`)
	assert.NotContains(t, buf.String(), "dropped")
}

func TestCIHandler_NilOptions(t *testing.T) {
	buf := &TestLogBuffer{}
	l := slog.New(NewCIHandler(buf, nil))
	l.Info("hello")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "source_file")
}
