package generation

import (
	"context"
	"time"
)

// Provider defines the interface for turning a prompt into free-form text.
// This interface is the boundary between the generation core and the
// external LLM services; adapters live under internal/platform.
//
// Implementations must be safe for concurrent use and must report failures
// as *ProviderError so the retry controller can classify them.
type Provider interface {
	// Name returns the provider identity reported in results ("ollama",
	// "openai", "gemini").
	Name() string

	// Supports reports whether the provider is configured to serve kind.
	Supports(kind ArtifactKind) bool

	// Generate performs one call and returns the raw output text.
	Generate(ctx context.Context, call Call) (string, error)
}

// Call is a provider-agnostic generation call.
type Call struct {
	Kind   ArtifactKind
	Prompt string
	// System is an optional system instruction.
	System      string
	TokenBudget int
	Temperature float64
	// Schema is an optional JSON schema describing the expected payload.
	// Providers that support constrained decoding forward it; others ignore it.
	Schema map[string]any
	// Timeout bounds the wall-clock time of the call, including any backoff
	// the provider performs internally. Zero means no extra bound.
	Timeout time.Duration
}
