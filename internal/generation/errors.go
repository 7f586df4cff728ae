package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrConfiguration is returned when no usable provider is configured or a
	// required setting is missing. It is never retried.
	ErrConfiguration = errors.New("generation is not configured")

	// ErrParameter is returned when a count, depth or node budget is outside
	// its allowed range. It is raised before any provider is called.
	ErrParameter = errors.New("invalid generation parameter")

	// ErrEmptySource is returned when the source text is empty after
	// normalization.
	ErrEmptySource = errors.New("no source text available")

	// ErrProvider is matched by every *ProviderError.
	ErrProvider = errors.New("provider call failed")

	// ErrParse is returned when no JSON payload can be recovered from the
	// provider output.
	ErrParse = errors.New("model did not return valid JSON")

	// ErrValidation is returned when a parsed payload does not match the
	// required shape of its artifact.
	ErrValidation = errors.New("payload failed validation")

	// ErrGenerationFailed is matched by *FailureError once all attempts are
	// exhausted.
	ErrGenerationFailed = errors.New("generation failed")
)

// ProviderErrorKind classifies a provider failure.
type ProviderErrorKind string

// Provider failure kinds
const (
	ProviderErrorTimeout       ProviderErrorKind = "timeout"
	ProviderErrorHTTP          ProviderErrorKind = "http"
	ProviderErrorRetryableHTTP ProviderErrorKind = "retryable_http"
	ProviderErrorTransport     ProviderErrorKind = "transport"
	ProviderErrorEmpty         ProviderErrorKind = "empty"
	ProviderErrorBlocked       ProviderErrorKind = "blocked"
)

// ProviderError is the uniform failure reported by provider adapters.
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// Retryable reports whether the failure is transient: timeouts, transport
// failures and the HTTP statuses classified by RetryableStatus.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case ProviderErrorTimeout, ProviderErrorTransport, ProviderErrorRetryableHTTP:
		return true
	default:
		return false
	}
}

// RetryableStatus reports whether an HTTP status signals a transient
// upstream condition.
func RetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// HTTPErrorKind returns the failure kind for a non-2xx status.
func HTTPErrorKind(code int) ProviderErrorKind {
	if RetryableStatus(code) {
		return ProviderErrorRetryableHTTP
	}
	return ProviderErrorHTTP
}

// FailureError is returned when every attempt of a request failed.
type FailureError struct {
	Kind     ArtifactKind
	Attempts int
	// Excerpt is a truncated, redacted copy of the last raw output. It is
	// only populated in diagnostic mode.
	Excerpt string
	Err     error
}

func (e *FailureError) Error() string {
	msg := fmt.Sprintf("%s: %s after %d attempt(s)", ErrGenerationFailed, e.Kind, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Excerpt != "" {
		msg += ". Raw output (truncated): " + e.Excerpt
	}
	return msg
}

// Unwrap returns both ErrGenerationFailed and the last attempt error.
func (e *FailureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}
