package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type scriptedResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

// fakeModels replays scripted results and records each request.
type fakeModels struct {
	mu      sync.Mutex
	results []scriptedResult
	models  []string
	configs []*genai.GenerateContentConfig
	prompts []string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.models = append(f.models, model)
	f.configs = append(f.configs, cfg)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}

	if len(f.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.resp, next.err
}

func (f *fakeModels) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.models)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testConfig() config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:         "test-key",
		Model:          "gemini-2.5-flash",
		MaxRetries:     4,
		RetryBaseDelay: time.Millisecond,
	}
}

func newTestProvider(t *testing.T, models *fakeModels) *Provider {
	t.Helper()
	p, err := newProvider(slog.New(slog.NewTextHandler(io.Discard, nil)), models, testConfig())
	require.NoError(t, err)
	return p
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []scriptedResult{{resp: textResponse(`{"title":"Cells"}`)}}}
	p := newTestProvider(t, models)

	out, err := p.Generate(context.Background(), generation.Call{
		Kind:        generation.KindQuiz,
		Prompt:      "make a quiz",
		System:      "return JSON",
		TokenBudget: 660,
		Temperature: 0.2,
		Schema:      map[string]any{"type": "object"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"title":"Cells"}`, out)
	require.Equal(t, 1, models.calls())
	assert.Equal(t, "gemini-2.5-flash", models.models[0])
	assert.Equal(t, "make a quiz", models.prompts[0])

	cfg := models.configs[0]
	assert.Equal(t, int32(660), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.2, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "return JSON", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
}

func TestGenerate_TextCallHasNoJSONMode(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []scriptedResult{{resp: textResponse("An answer.")}}}
	p := newTestProvider(t, models)

	out, err := p.Generate(context.Background(), generation.Call{Kind: generation.KindChat, Prompt: "Question: why?"})
	require.NoError(t, err)
	assert.Equal(t, "An answer.", out)
	assert.Empty(t, models.configs[0].ResponseMIMEType)
	assert.Nil(t, models.configs[0].SystemInstruction)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []scriptedResult{
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{err: errors.New("connection reset by peer")},
		{err: genai.APIError{Code: 429, Message: "rate limited"}},
		{resp: textResponse("ok")},
	}}
	p := newTestProvider(t, models)

	out, err := p.Generate(context.Background(), generation.Call{Kind: generation.KindSummary, Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 4, models.calls())
}

func TestGenerate_StopsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	results := make([]scriptedResult, 0, 6)
	for range 6 {
		results = append(results, scriptedResult{err: genai.APIError{Code: 500, Message: "internal"}})
	}
	models := &fakeModels{results: results}
	p := newTestProvider(t, models)

	_, err := p.Generate(context.Background(), generation.Call{Kind: generation.KindSummary, Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 5, models.calls(), "one call plus four retries")

	var providerErr *generation.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, generation.ProviderErrorRetryableHTTP, providerErr.Kind)
	assert.Equal(t, 500, providerErr.StatusCode)
	assert.ErrorIs(t, err, generation.ErrProvider)
}

func TestGenerate_PermanentFailuresAreNotRetried(t *testing.T) {
	t.Parallel()

	blockedPrompt := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}
	blockedCandidate := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}

	testCases := []struct {
		name   string
		result scriptedResult
		kind   generation.ProviderErrorKind
		status int
	}{
		{"bad request", scriptedResult{err: genai.APIError{Code: 400, Message: "bad"}}, generation.ProviderErrorHTTP, 400},
		{"unauthorized pointer", scriptedResult{err: &genai.APIError{Code: 401}}, generation.ProviderErrorHTTP, 401},
		{"blocked prompt", scriptedResult{resp: blockedPrompt}, generation.ProviderErrorBlocked, 0},
		{"blocked candidate", scriptedResult{resp: blockedCandidate}, generation.ProviderErrorBlocked, 0},
		{"no candidates", scriptedResult{resp: &genai.GenerateContentResponse{}}, generation.ProviderErrorEmpty, 0},
		{"nil response", scriptedResult{}, generation.ProviderErrorEmpty, 0},
		{"blank text", scriptedResult{resp: textResponse("  \n")}, generation.ProviderErrorEmpty, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			models := &fakeModels{results: []scriptedResult{tc.result, {resp: textResponse("unused")}}}
			p := newTestProvider(t, models)

			_, err := p.Generate(context.Background(), generation.Call{Kind: generation.KindQuiz, Prompt: "p"})

			var providerErr *generation.ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tc.kind, providerErr.Kind)
			assert.Equal(t, tc.status, providerErr.StatusCode)
			assert.Equal(t, 1, models.calls())
		})
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	t.Parallel()

	models := &fakeModels{results: []scriptedResult{{err: context.Canceled}}}
	p := newTestProvider(t, models)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, generation.Call{Kind: generation.KindChat, Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, models.calls(), 1)
}

func TestFullJitter(t *testing.T) {
	t.Parallel()

	base := 600 * time.Millisecond
	for n := uint(0); n < 5; n++ {
		ceiling := base << n
		for range 200 {
			d := fullJitter(base, n)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, ceiling)
		}
	}
	assert.Equal(t, time.Duration(0), fullJitter(0, 3))
}

func TestNewProvider_Validation(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := newProvider(nil, &fakeModels{}, testConfig())
	assert.EqualError(t, err, "logger cannot be nil")

	_, err = newProvider(logger, nil, testConfig())
	assert.Error(t, err)

	testCases := []struct {
		name   string
		mutate func(*config.GeminiConfig)
	}{
		{"missing key", func(c *config.GeminiConfig) { c.APIKey = "" }},
		{"missing model", func(c *config.GeminiConfig) { c.Model = "" }},
		{"negative retries", func(c *config.GeminiConfig) { c.MaxRetries = -1 }},
		{"zero delay", func(c *config.GeminiConfig) { c.RetryBaseDelay = 0 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := newProvider(logger, &fakeModels{}, cfg)
			assert.ErrorIs(t, err, generation.ErrConfiguration)
		})
	}
}

func TestProvider_Identity(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, &fakeModels{})
	assert.Equal(t, "gemini", p.Name())
	for _, kind := range []generation.ArtifactKind{
		generation.KindQuiz, generation.KindMindmap, generation.KindChat, generation.KindSectionSummary,
	} {
		assert.True(t, p.Supports(kind))
	}
}
