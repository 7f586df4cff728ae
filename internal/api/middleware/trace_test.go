package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studygen/internal/api/shared"
	"github.com/phrazzld/studygen/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	base, buf := logger.GetTestLogger(t)

	var traceID string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, traceID, shared.TraceIDLength)
	assert.Equal(t, traceID, rec.Header().Get(TraceIDHeader))
	logger.AssertLogField(t, buf, "msg", "request started")
	logger.AssertLogField(t, buf, "msg", "inside handler")
	logger.AssertLogField(t, buf, "trace_id", traceID)
}

func TestTraceMiddleware_UniqueIDs(t *testing.T) {
	handler := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for range 50 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
		id := rec.Header().Get(TraceIDHeader)
		assert.False(t, seen[id], "trace id %s repeated", id)
		seen[id] = true
	}
}

func TestTraceMiddleware_ClientID(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		reused bool
	}{
		{"well formed", "mobile-7f3a9c21", true},
		{"too short", "abc", false},
		{"bad characters", "id with spaces", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			handler := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = shared.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			req.Header.Set(TraceIDHeader, tc.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(TraceIDHeader))
			if tc.reused {
				assert.Equal(t, tc.header, seen)
			} else {
				assert.Len(t, seen, shared.TraceIDLength)
			}
		})
	}
}
