package gemini

import (
	"fmt"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
)

// validateConfig checks the settings Provider needs before any client is
// created.
//
// Parameters:
//   - cfg: the Gemini configuration to validate
//
// Returns:
//   - An error wrapping generation.ErrConfiguration if validation fails, nil otherwise
func validateConfig(cfg config.GeminiConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrConfiguration)
	}

	if cfg.Model == "" {
		return fmt.Errorf("%w: gemini model name cannot be empty", generation.ErrConfiguration)
	}

	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: gemini max retries cannot be negative", generation.ErrConfiguration)
	}

	if cfg.RetryBaseDelay <= 0 {
		return fmt.Errorf("%w: gemini retry base delay must be positive", generation.ErrConfiguration)
	}

	return nil
}
