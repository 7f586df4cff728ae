package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studygen/internal/api/shared"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/source"
)

// StatusClientClosedRequest is written when the client went away before
// the reply was ready. Nothing reads it but the access log.
const StatusClientClosedRequest = 499

// errSourceLookupDisabled is returned when a request names stored notes but
// no notes library is configured.
var errSourceLookupDisabled = errors.New("source lookup is not configured")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, generation.ErrParameter),
		errors.Is(err, generation.ErrEmptySource),
		errors.Is(err, errSourceLookupDisabled):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound

	// No usable provider
	case errors.Is(err, generation.ErrConfiguration):
		return http.StatusServiceUnavailable

	// Request abandoned or out of time
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case isTimeout(err):
		return http.StatusGatewayTimeout

	// Upstream model failures
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrProvider):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, generation.ErrParameter):
		return "Invalid generation parameters"

	case errors.Is(err, generation.ErrEmptySource):
		return "No extracted text available for the selected notes"

	case errors.Is(err, errSourceLookupDisabled):
		return "Stored notes are not available on this server"

	case errors.Is(err, source.ErrNotFound):
		return "Source document not found"

	case errors.Is(err, generation.ErrConfiguration):
		return "No text generation provider is configured"

	case errors.Is(err, context.Canceled):
		return "Request cancelled"

	case errors.Is(err, generation.ErrGenerationFailed):
		return generationFailureMessage(err)

	case isTimeout(err):
		return "The text generation provider timed out"

	case errors.Is(err, generation.ErrProvider):
		return "The text generation provider request failed"

	default:
		return "An unexpected error occurred"
	}
}

// isTimeout reports whether err ends in a deadline, either the request's
// own or a provider call that ran past its budget.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var providerErr *generation.ProviderError
	return errors.As(err, &providerErr) && providerErr.Kind == generation.ProviderErrorTimeout
}

// generationFailureMessage names the artifact that could not be produced.
// The redacted raw excerpt is included when the service attached one.
func generationFailureMessage(err error) string {
	var failure *generation.FailureError
	if !errors.As(err, &failure) {
		return "Generation failed"
	}

	msg := fmt.Sprintf("Failed to generate %s after %d attempt(s)", failure.Kind, failure.Attempts)
	if failure.Excerpt != "" {
		msg += ". Raw output (truncated): " + failure.Excerpt
	}
	return msg
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "required_without":
		return "source_text or source_refs is required"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. A non-empty message replaces the safe default.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if strings.TrimSpace(message) == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	switch {
	case errors.Is(err, source.ErrNotFound):
		opts = append(opts, shared.WithLogLevel(slog.LevelWarn))
	case status == StatusClientClosedRequest:
		opts = append(opts, shared.WithLogLevel(slog.LevelInfo))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
