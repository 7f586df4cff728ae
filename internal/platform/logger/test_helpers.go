package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogBuffer captures JSON log output in tests. It is safe for
// concurrent writers.
type TestLogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// GetLogEntries decodes every captured record.
func (b *TestLogBuffer) GetLogEntries() ([]map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(b.String()))

	var entries []map[string]any
	for {
		var entry map[string]any
		err := dec.Decode(&entry)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// GetTestLogger returns a debug-level JSON logger writing to a fresh
// buffer. The captured output is printed if the test fails.
func GetTestLogger(t testing.TB) (*slog.Logger, *TestLogBuffer) {
	t.Helper()

	buf := &TestLogBuffer{}
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("captured logs:\n%s", buf.String())
		}
	})

	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogContains fails the test unless the raw output contains content.
func AssertLogContains(t testing.TB, buf *TestLogBuffer, content string) {
	t.Helper()
	assert.Contains(t, buf.String(), content)
}

// AssertLogField fails the test unless some record has field set to
// expected. Numbers decode as float64.
func AssertLogField(t testing.TB, buf *TestLogBuffer, field string, expected any) {
	t.Helper()

	entries, err := buf.GetLogEntries()
	require.NoError(t, err, "log output is not JSON")

	for _, entry := range entries {
		if value, ok := entry[field]; ok && value == expected {
			return
		}
	}
	assert.Failf(t, "log field not found", "no record has %s=%v", field, expected)
}
