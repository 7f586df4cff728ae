package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/platform/logger"
	"github.com/phrazzld/studygen/internal/redact"
)

// ErrorResponse is the body of every error reply. Kind and Attempts are set
// when an artifact could not be generated.
type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// ResponseOption customizes RespondWithErrorAndLog.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	level *slog.Level
}

// WithLogLevel overrides the level derived from the status code.
func WithLogLevel(level slog.Level) ResponseOption {
	return func(opts *responseOptions) {
		opts.level = &level
	}
}

// RespondWithJSON writes data as JSON with the given status code. HTML is
// not escaped, so generated text reaches the client verbatim.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode JSON response", "error", err)
	}
}

// RespondWithErrorAndLog writes userMessage as an error response and logs
// the redacted err. The raw error never reaches the client.
//
// Levels: upstream failures (502, 503, 504) and 429 log at WARN, other 5xx
// at ERROR, everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	resp := ErrorResponse{
		Error:   userMessage,
		TraceID: GetTraceID(r.Context()),
	}

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))

		var failure *generation.FailureError
		if errors.As(err, &failure) {
			resp.Kind = string(failure.Kind)
			resp.Attempts = failure.Attempts
			attrs = append(attrs,
				slog.String("artifact_kind", string(failure.Kind)),
				slog.Int("attempts", failure.Attempts))
		}

		var providerErr *generation.ProviderError
		if errors.As(err, &providerErr) {
			attrs = append(attrs,
				slog.String("provider", providerErr.Provider),
				slog.String("provider_error", string(providerErr.Kind)))
			if providerErr.StatusCode != 0 {
				attrs = append(attrs, slog.Int("upstream_status", providerErr.StatusCode))
			}
		}
	}

	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}
	level := levelForStatus(status)
	if o.level != nil {
		level = *o.level
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, resp)
}

func levelForStatus(status int) slog.Level {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
		return slog.LevelWarn
	}
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelDebug
}
