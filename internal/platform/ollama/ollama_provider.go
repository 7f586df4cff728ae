package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/redact"
)

// ProviderName is the identity reported by Provider.Name.
const ProviderName = "ollama"

// maxErrorBody bounds how much of a failed response body is kept as the
// error message.
const maxErrorBody = 2048

// Provider generates text with a local Ollama server.
type Provider struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	cfg      config.OllamaConfig
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates an Ollama provider. A nil client uses a default
// http.Client without its own timeout; calls are bounded by their context.
func NewProvider(logger *slog.Logger, client *http.Client, cfg config.OllamaConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: ollama URL cannot be empty", generation.ErrConfiguration)
	}

	if client == nil {
		client = &http.Client{}
	}

	return &Provider{
		logger:   logger.With("component", "ollama"),
		client:   client,
		endpoint: base + "/api/generate",
		cfg:      cfg,
	}, nil
}

// Name returns "ollama".
func (p *Provider) Name() string {
	return ProviderName
}

// Supports reports whether a model is configured for kind.
func (p *Provider) Supports(kind generation.ArtifactKind) bool {
	return p.modelFor(kind) != ""
}

// modelFor resolves the per-kind model, falling back to the default model.
func (p *Provider) modelFor(kind generation.ArtifactKind) string {
	var override string
	switch kind {
	case generation.KindQuiz:
		override = p.cfg.QuizModel
	case generation.KindFlashcards:
		override = p.cfg.FlashcardsModel
	case generation.KindMindmap:
		override = p.cfg.MindmapModel
	case generation.KindGrade:
		override = p.cfg.GraderModel
	case generation.KindSummary:
		override = p.cfg.SummaryModel
	case generation.KindSectionSummary:
		override = firstNonEmpty(p.cfg.SummaryModel, p.cfg.MindmapModel)
	}
	return strings.TrimSpace(firstNonEmpty(override, p.cfg.Model))
}

// Generate performs one non-streaming /api/generate call.
func (p *Provider) Generate(ctx context.Context, call generation.Call) (string, error) {
	model := p.modelFor(call.Kind)
	if model == "" {
		return "", fmt.Errorf("%w: no ollama model configured for %s", generation.ErrConfiguration, call.Kind)
	}

	body, err := json.Marshal(generateRequest{
		Model:     model,
		Prompt:    call.Prompt,
		System:    call.System,
		Format:    call.Schema,
		Stream:    false,
		KeepAlive: p.cfg.KeepAlive,
		Options: requestOptions{
			Temperature: call.Temperature,
			NumPredict:  call.TokenBudget,
			NumCtx:      p.cfg.NumCtx,
			NumThread:   p.cfg.NumThread,
			NumBatch:    p.cfg.NumBatch,
			NumGPU:      p.cfg.NumGPU,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create ollama request: %v", generation.ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.logger.DebugContext(ctx, "Calling Ollama",
		"kind", call.Kind,
		"model", model,
		"num_predict", call.TokenBudget,
		"structured", call.Schema != nil)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorTransport,
			Message:  redact.String(err.Error()),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorTransport,
			Message:  "failed to decode response",
			Err:      err,
		}
	}

	if result.Error != "" {
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorHTTP,
			Message:  redact.String(result.Error),
		}
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", &generation.ProviderError{
			Provider: ProviderName,
			Kind:     generation.ProviderErrorEmpty,
			Message:  "response was empty",
		}
	}

	return result.Response, nil
}

// statusError builds the error for a non-2xx reply, preferring the server's
// error field over the raw body.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(raw))
	var body generateResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		message = body.Error
	}

	return &generation.ProviderError{
		Provider:   ProviderName,
		Kind:       generation.HTTPErrorKind(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    redact.String(message),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
