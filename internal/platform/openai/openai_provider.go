package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/redact"
)

// ProviderName is the identity reported by Provider.Name.
const ProviderName = "openai"

// Provider generates text with the OpenAI chat completions API.
type Provider struct {
	logger *slog.Logger
	client openai.Client
	model  string
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates an OpenAI provider from cfg. Extra request options are
// appended after the configured ones.
func NewProvider(logger *slog.Logger, cfg config.OpenAIConfig, opts ...option.RequestOption) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrConfiguration)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: openai model cannot be empty", generation.ErrConfiguration)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.BaseURL))
	}
	requestOpts = append(requestOpts, opts...)

	return &Provider{
		logger: logger.With("component", "openai"),
		client: openai.NewClient(requestOpts...),
		model:  cfg.Model,
	}, nil
}

// Name returns "openai".
func (p *Provider) Name() string {
	return ProviderName
}

// Supports reports true for every kind.
func (p *Provider) Supports(generation.ArtifactKind) bool {
	return true
}

// Generate sends one chat completion with an optional system message and
// returns the first choice's content.
func (p *Provider) Generate(ctx context.Context, call generation.Call) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if call.System != "" {
		messages = append(messages, openai.SystemMessage(call.System))
	}
	messages = append(messages, openai.UserMessage(call.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(call.Temperature),
	}
	if call.TokenBudget > 0 {
		params.MaxTokens = openai.Int(int64(call.TokenBudget))
	}

	p.logger.DebugContext(ctx, "Calling OpenAI",
		"kind", call.Kind,
		"model", p.model,
		"max_tokens", call.TokenBudget)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", classifyError(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorEmpty,
			Message:  "response was missing choices",
		}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorEmpty,
			Message:  "response was missing content",
		}
	}
	return content, nil
}

// classifyError maps an SDK error to a *generation.ProviderError.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &generation.ProviderError{
			Provider:   ProviderName,
			Kind:       generation.HTTPErrorKind(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    redact.String(apiErr.Message),
		}
	}
	return &generation.ProviderError{
		Provider: ProviderName,
		Kind:     generation.ProviderErrorTransport,
		Message:  redact.String(err.Error()),
	}
}
