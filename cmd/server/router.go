package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studygen/internal/api"
	apiMiddleware "github.com/phrazzld/studygen/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	generationHandler := api.NewGenerationHandler(app.service, app.finder, app.maxSourceChars())
	healthHandler := api.NewHealthHandler(app.router)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quizzes", generationHandler.CreateQuiz)
		r.Post("/quizzes/grade", generationHandler.GradeAnswers)
		r.Post("/flashcards", generationHandler.CreateFlashcards)
		r.Post("/mindmaps", generationHandler.CreateMindmap)
		r.Post("/mindmaps/sections/summary", generationHandler.SummarizeSection)
		r.Post("/summaries", generationHandler.CreateSummary)
		r.Post("/chat", generationHandler.Chat)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
