package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"google.golang.org/genai"
)

// Provider implements the generation.Provider interface using Google's
// Gemini API.
type Provider struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models performs the GenerateContent calls
	models contentGenerator

	// model is the name of the Gemini model to use
	model string

	// maxRetries bounds the in-call retries after the first request
	maxRetries int

	// baseDelay is the base of the full-jitter exponential backoff
	baseDelay time.Duration
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a new Gemini provider with the provided dependencies.
//
// Parameters:
//   - ctx: Context for client initialization
//   - logger: A structured logger for operation logging
//   - cfg: Gemini configuration containing API key, model name and retry settings
//
// Returns:
//   - A properly initialized Provider or an error if initialization fails
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.GeminiConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrConfiguration, err)
	}

	return newProvider(logger, client.Models, cfg)
}

func newProvider(logger *slog.Logger, models contentGenerator, cfg config.GeminiConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, errors.New("content generator cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Provider{
		logger:     logger.With("component", "gemini"),
		models:     models,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
	}, nil
}

// Name returns "gemini".
func (p *Provider) Name() string {
	return ProviderName
}

// Supports reports true for every kind; one model serves them all.
func (p *Provider) Supports(generation.ArtifactKind) bool {
	return true
}

// Generate sends one generation call, retrying transient failures with
// full-jitter exponential backoff.
//
// Parameters:
//   - ctx: Context for the operation; cancellation also interrupts backoff sleeps
//   - call: The provider-agnostic call to perform
//
// Returns:
//   - The raw text of the first candidate
//   - A *generation.ProviderError if every try failed, or the context error
func (p *Provider) Generate(ctx context.Context, call generation.Call) (string, error) {
	contents := genai.Text(call.Prompt)
	genConfig := p.requestConfig(call)

	tries := 0
	text, err := retry.DoWithData(
		func() (string, error) {
			tries++
			return p.generateOnce(ctx, contents, genConfig)
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.maxRetries+1)),
		retry.RetryIf(isRetryable),
		retry.DelayType(p.backoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.WarnContext(ctx, "Gemini call failed, retrying",
				"kind", call.Kind,
				"attempt", n+1,
				"max_attempts", p.maxRetries+1,
				"error", err)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, generation.ErrProvider) {
			return "", ctxErr
		}
		p.logger.ErrorContext(ctx, "Gemini call failed",
			"kind", call.Kind,
			"tries", tries,
			"error", err)
		return "", err
	}

	p.logger.DebugContext(ctx, "Gemini call successful",
		"kind", call.Kind,
		"tries", tries,
		"output_length", len(text))
	return text, nil
}

func (p *Provider) requestConfig(call generation.Call) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(call.Temperature)),
	}
	if call.TokenBudget > 0 {
		genConfig.MaxOutputTokens = int32(call.TokenBudget)
	}
	if call.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(call.System, genai.RoleUser)
	}
	if call.Schema != nil {
		genConfig.ResponseMIMEType = "application/json"
	}
	return genConfig
}

func (p *Provider) generateOnce(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := p.models.GenerateContent(ctx, p.model, contents, genConfig)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", retry.Unrecoverable(err)
		}
		return "", classifyError(err)
	}
	return responseText(resp)
}

// backoff implements retry.DelayTypeFunc: a uniformly random delay in
// [0, base·2^n].
func (p *Provider) backoff(n uint, _ error, _ *retry.Config) time.Duration {
	return fullJitter(p.baseDelay, n)
}

// fullJitter returns a random duration in [0, base·2^n].
func fullJitter(base time.Duration, n uint) time.Duration {
	ceiling := base << min(n, 16)
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}

// responseText extracts the first candidate's text, rejecting blocked and
// empty responses.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", emptyError(errNoContent)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorBlocked,
			Message:  string(resp.PromptFeedback.BlockReason),
			Err:      errBlocked,
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", emptyError(errNoContent)
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorBlocked,
			Message:  string(candidate.FinishReason),
			Err:      errBlocked,
		}
	}
	if candidate.Content == nil {
		return "", emptyError(errNoContent)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", emptyError(errNoContent)
	}
	return text, nil
}

func emptyError(cause error) error {
	return &generation.ProviderError{
		Provider: ProviderName,
		Kind:     generation.ProviderErrorEmpty,
		Err:      cause,
	}
}

// classifyError maps a client error to a *generation.ProviderError.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusError(*apiErrPtr)
	}
	return &generation.ProviderError{
		Provider: ProviderName,
		Kind:     generation.ProviderErrorTransport,
		Err:      err,
	}
}

func statusError(apiErr genai.APIError) error {
	return &generation.ProviderError{
		Provider:   ProviderName,
		Kind:       generation.HTTPErrorKind(apiErr.Code),
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
	}
}

// isRetryable reports whether err is a transient provider failure.
func isRetryable(err error) bool {
	var providerErr *generation.ProviderError
	return errors.As(err, &providerErr) && providerErr.Retryable()
}
