package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/phrazzld/studygen/internal/api/shared"
	"github.com/phrazzld/studygen/internal/generation"
	"github.com/phrazzld/studygen/internal/platform/logger"
	"github.com/phrazzld/studygen/internal/source"
)

// GenerationService is the generation API consumed by the handlers.
// *generation.Service implements it.
type GenerationService interface {
	GenerateQuiz(ctx context.Context, req generation.QuizRequest) (*generation.Quiz, error)
	GenerateFlashcards(ctx context.Context, req generation.FlashcardsRequest) (*generation.FlashcardSet, error)
	GenerateMindmap(ctx context.Context, req generation.MindmapRequest) (*generation.MindMap, error)
	GradeTheoryAnswers(ctx context.Context, req generation.GradeRequest) (*generation.GradeSet, error)
	Summarize(ctx context.Context, req generation.SummaryRequest) (*generation.Summary, error)
	Answer(ctx context.Context, req generation.ChatRequest) (*generation.ChatAnswer, error)
	SummarizeSection(ctx context.Context, req generation.SectionSummaryRequest) (*generation.SectionSummary, error)
}

var _ GenerationService = (*generation.Service)(nil)

// GenerationHandler handles artifact generation HTTP requests
type GenerationHandler struct {
	service   GenerationService
	finder    source.Finder
	maxSource int
}

// NewGenerationHandler creates a new GenerationHandler. finder may be nil,
// in which case requests naming stored notes are rejected. maxSourceChars
// bounds the text assembled from stored notes.
func NewGenerationHandler(service GenerationService, finder source.Finder, maxSourceChars int) *GenerationHandler {
	return &GenerationHandler{
		service:   service,
		finder:    finder,
		maxSource: maxSourceChars,
	}
}

// decodeAndValidate parses the body into req and validates it, writing a 400
// response on failure.
func (h *GenerationHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// resolveSource returns the inline text, or the stored notes named by refs
// when no inline text is given.
func (h *GenerationHandler) resolveSource(ctx context.Context, in SourceInput) (string, error) {
	if strings.TrimSpace(in.SourceText) != "" || len(in.SourceRefs) == 0 {
		return in.SourceText, nil
	}
	if h.finder == nil {
		return "", errSourceLookupDisabled
	}
	return source.Resolve(ctx, h.finder, in.SourceRefs, h.maxSource)
}

// respond writes result as JSON, or maps err to an error response.
func respond[T any](w http.ResponseWriter, r *http.Request, result *T, err error) {
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// CreateQuiz handles POST /api/quizzes requests
func (h *GenerationHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	text, err := h.resolveSource(r.Context(), req.SourceInput)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	quiz, err := h.service.GenerateQuiz(r.Context(), generation.QuizRequest{
		SourceText:    text,
		QuestionCount: withDefault(req.NumQuestions, defaultNumQuestions),
		Mode:          generation.QuizMode(req.Mode),
		Provider:      req.Provider,
	})
	if err == nil {
		logger.FromContext(r.Context()).InfoContext(r.Context(), "quiz generated",
			"provider", quiz.Provider,
			"questions", len(quiz.Questions))
	}
	respond(w, r, quiz, err)
}

// CreateFlashcards handles POST /api/flashcards requests
func (h *GenerationHandler) CreateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req FlashcardsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	text, err := h.resolveSource(r.Context(), req.SourceInput)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.service.GenerateFlashcards(r.Context(), generation.FlashcardsRequest{
		SourceText: text,
		CardCount:  withDefault(req.NumCards, defaultNumCards),
		Provider:   req.Provider,
	})
	respond(w, r, set, err)
}

// CreateMindmap handles POST /api/mindmaps requests
func (h *GenerationHandler) CreateMindmap(w http.ResponseWriter, r *http.Request) {
	var req MindmapRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	text, err := h.resolveSource(r.Context(), req.SourceInput)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mindmap, err := h.service.GenerateMindmap(r.Context(), generation.MindmapRequest{
		SourceText: text,
		MaxDepth:   withDefault(req.MaxDepth, defaultMaxDepth),
		MaxNodes:   withDefault(req.MaxNodes, defaultMaxNodes),
		Title:      req.Title,
		Provider:   req.Provider,
	})
	respond(w, r, mindmap, err)
}

// GradeAnswers handles POST /api/quizzes/grade requests
func (h *GenerationHandler) GradeAnswers(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	grades, err := h.service.GradeTheoryAnswers(r.Context(), generation.GradeRequest{
		Items:    gradeItems(req.Items),
		Provider: req.Provider,
	})
	respond(w, r, grades, err)
}

// CreateSummary handles POST /api/summaries requests
func (h *GenerationHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	text, err := h.resolveSource(r.Context(), req.SourceInput)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.service.Summarize(r.Context(), generation.SummaryRequest{
		SourceText: text,
		Focus:      req.Focus,
		Length:     generation.SummaryLength(req.Length),
		Provider:   req.Provider,
	})
	respond(w, r, summary, err)
}

// Chat handles POST /api/chat requests
func (h *GenerationHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.service.Answer(r.Context(), generation.ChatRequest{
		Message:  req.Message,
		Provider: req.Provider,
	})
	respond(w, r, answer, err)
}

// SummarizeSection handles POST /api/mindmaps/sections/summary requests
func (h *GenerationHandler) SummarizeSection(w http.ResponseWriter, r *http.Request) {
	var req SectionSummaryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	text, err := h.resolveSource(r.Context(), req.SourceInput)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.service.SummarizeSection(r.Context(), generation.SectionSummaryRequest{
		SourceText: text,
		Topic:      req.Topic,
		Size:       generation.SectionSize(req.Size),
		Provider:   req.Provider,
	})
	respond(w, r, summary, err)
}

func withDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
