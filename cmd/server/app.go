package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/studygen/internal/config"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/platform/gemini"
	"github.com/phrazzld/studygen/internal/platform/ollama"
	"github.com/phrazzld/studygen/internal/platform/openai"
	"github.com/phrazzld/studygen/internal/source"
)

// application holds all the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	router  *generation.Router
	service *generation.Service

	// finder is nil when no notes directory is configured.
	finder source.Finder
}

// newApplication wires providers, the generation service and the notes
// library from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providers, err := buildProviders(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	router := generation.NewRouter(providers...)
	if len(providers) == 0 {
		logger.Warn("No LLM provider configured; generation requests will fail")
	} else {
		logger.Info("LLM providers configured", "providers", router.Names())
	}

	service, err := generation.NewService(router, logger, serviceOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		router:  router,
		service: service,
	}

	if cfg.Sources.Dir != "" {
		finder := source.NewMemoryFinder()
		n, err := source.LoadFS(finder, os.DirFS(cfg.Sources.Dir))
		if err != nil {
			return nil, fmt.Errorf("failed to load notes from %s: %w", cfg.Sources.Dir, err)
		}
		logger.Info("Notes library loaded", "dir", cfg.Sources.Dir, "documents", n)
		app.finder = finder
	}

	return app, nil
}

// buildProviders creates the enabled providers in routing precedence order:
// the local model service first, then OpenAI, then Gemini.
func buildProviders(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) ([]generation.Provider, error) {
	var providers []generation.Provider

	if cfg.Ollama.Enabled() {
		p, err := ollama.NewProvider(logger, nil, cfg.Ollama)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.OpenAI.Enabled() {
		p, err := openai.NewProvider(logger, cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Gemini.Enabled() {
		p, err := gemini.NewProvider(ctx, logger, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// serviceOptions maps configuration onto generation budgets.
func serviceOptions(cfg *config.Config) generation.Options {
	return generation.Options{
		Limits: generation.Limits{
			Quiz:       cfg.Limits.QuizChars,
			Flashcards: cfg.Limits.FlashcardsChars,
			Mindmap:    cfg.Limits.MindmapChars,
			Summary:    cfg.Limits.SummaryChars,
			Section:    cfg.Limits.SectionChars,
		},
		Timeouts: generation.Timeouts{
			Quiz:       cfg.Timeouts.Quiz,
			Flashcards: cfg.Timeouts.Flashcards,
			Mindmap:    cfg.Timeouts.Mindmap,
			Grade:      cfg.Timeouts.Grade,
			Summary:    cfg.Timeouts.Summary,
			Chat:       cfg.Timeouts.Chat,
			Section:    cfg.Timeouts.Section,
		},
		Diagnostics: cfg.Server.IsDevelopment(),
	}
}

// maxSourceChars is the largest per-kind budget; notes assembled by
// reference are cut here and trimmed further by the service.
func (app *application) maxSourceChars() int {
	l := app.config.Limits
	return max(l.QuizChars, l.FlashcardsChars, l.MindmapChars, l.SummaryChars, l.SectionChars)
}
