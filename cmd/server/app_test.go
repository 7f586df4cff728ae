package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			Environment:     config.EnvProduction,
			ShutdownTimeout: 5 * time.Second,
		},
		LLM: config.LLMConfig{
			OpenAI: config.OpenAIConfig{Model: "gpt-4o-mini"},
			Gemini: config.GeminiConfig{Model: "gemini-2.0-flash", RetryBaseDelay: time.Second},
		},
		Limits: config.LimitsConfig{
			QuizChars:       8000,
			FlashcardsChars: 8000,
			MindmapChars:    8000,
			SummaryChars:    15000,
			SectionChars:    8000,
		},
		Timeouts: config.TimeoutsConfig{
			Quiz:       time.Minute,
			Flashcards: time.Minute,
			Mindmap:    time.Minute,
			Grade:      time.Minute,
			Summary:    time.Minute,
			Chat:       time.Minute,
			Section:    time.Minute,
		},
	}
}

// newOllamaStub answers every /api/generate call with response.
func newOllamaStub(t *testing.T, response string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"response": response, "done": true})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serve(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_Validation(t *testing.T) {
	t.Parallel()

	_, err := newApplication(context.Background(), nil, discardLogger())
	assert.EqualError(t, err, "config cannot be nil")

	_, err = newApplication(context.Background(), testConfig(), nil)
	assert.EqualError(t, err, "logger cannot be nil")
}

func TestNewApplication_NoProviders(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), discardLogger())
	require.NoError(t, err)
	assert.Empty(t, app.router.Names())
	assert.Nil(t, app.finder)

	handler := app.setupRouter()

	rec := serve(t, handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","providers":[]}`, rec.Body.String())

	rec = serve(t, handler, http.MethodPost, "/api/chat", `{"message":"What is ATP?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildProviders_Precedence(t *testing.T) {
	t.Parallel()

	cfg := testConfig().LLM
	cfg.Ollama = config.OllamaConfig{URL: "http://localhost:11434", Model: "llama3.1"}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Gemini.APIKey = "gemini-test"

	providers, err := buildProviders(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"ollama", "openai", "gemini"}, generation.NewRouter(providers...).Names())
}

func TestServiceOptions(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	opts := serviceOptions(cfg)
	assert.False(t, opts.Diagnostics)
	assert.Equal(t, 15000, opts.Limits.Summary)
	assert.Equal(t, time.Minute, opts.Timeouts.Section)

	cfg.Server.Environment = config.EnvDevelopment
	assert.True(t, serviceOptions(cfg).Diagnostics)

	app := &application{config: cfg}
	assert.Equal(t, 15000, app.maxSourceChars())
}

func TestRouter_ChatThroughOllama(t *testing.T) {
	t.Parallel()

	srv := newOllamaStub(t, "ATP carries energy inside cells.")
	cfg := testConfig()
	cfg.LLM.Ollama = config.OllamaConfig{URL: srv.URL, Model: "llama3.1"}

	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	handler := app.setupRouter()

	rec := serve(t, handler, http.MethodPost, "/api/chat", `{"message":"What is ATP?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	var answer generation.ChatAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "ollama", answer.Provider)
	assert.Contains(t, answer.Answer, "ATP carries energy")
}

func TestRouter_SourceRefs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "biology"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "biology", "cells.md"), []byte("Cells are the unit of life."), 0o600))

	cfg := testConfig()
	cfg.Sources.Dir = dir

	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, app.finder)

	rec := serve(t, app.setupRouter(), http.MethodPost, "/api/summaries", `{"source_refs":["biology/missing"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SourceRefsDisabled(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), discardLogger())
	require.NoError(t, err)

	rec := serve(t, app.setupRouter(), http.MethodPost, "/api/flashcards", `{"source_refs":["biology/cells"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), discardLogger())
	require.NoError(t, err)

	rec := serve(t, app.setupRouter(), http.MethodGet, "/api/quizzes", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartHTTPServer_Shutdown(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.Port = 0
	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.startHTTPServer(ctx, app.setupRouter()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
