package shared

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type of context keys set by this package.
type ContextKey string

// TraceIDKey is the context key of the request trace ID.
const TraceIDKey ContextKey = "traceID"

// TraceIDLength is the length of a generated trace ID in hex characters.
const TraceIDLength = 32

// maxTraceIDLength bounds trace IDs accepted from clients.
const maxTraceIDLength = 64

// WithTraceID returns a copy of ctx carrying id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// SetTraceID adds a freshly generated trace ID to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// NewTraceID returns a random 32-character hex ID. When the random source
// fails it falls back to the clock, never to a static value.
func NewTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		slog.Error("failed to generate random trace ID", "error", err, "fallback", "clock")
		return fmt.Sprintf("%0*x", TraceIDLength, time.Now().UnixNano())
	}
	return hex.EncodeToString(id[:])
}

// ValidTraceID reports whether a client-supplied trace ID may be reused:
// 8 to 64 characters of letters, digits, '-' or '_'.
func ValidTraceID(id string) bool {
	if len(id) < 8 || len(id) > maxTraceIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
