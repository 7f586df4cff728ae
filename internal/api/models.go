package api

import "github.com/phrazzld/studygen/internal/generation"

// Defaults applied when a request leaves a count out.
const (
	defaultNumQuestions = 10
	defaultNumCards     = 20
	defaultMaxDepth     = 4
	defaultMaxNodes     = 40
)

// SourceInput names the text a generation request works from: either inline
// text or references to stored notes, resolved in order.
type SourceInput struct {
	SourceText string   `json:"source_text" validate:"required_without=SourceRefs"`
	SourceRefs []string `json:"source_refs" validate:"omitempty,max=20,dive,required"`
}

// QuizRequest is the request body of POST /api/quizzes.
type QuizRequest struct {
	SourceInput
	NumQuestions int    `json:"num_questions" validate:"omitempty,min=1,max=50"`
	Mode         string `json:"mode"          validate:"omitempty,oneof=options theory both"`
	Provider     string `json:"provider"      validate:"omitempty,max=32"`
}

// FlashcardsRequest is the request body of POST /api/flashcards.
type FlashcardsRequest struct {
	SourceInput
	NumCards int    `json:"num_cards" validate:"omitempty,min=1,max=100"`
	Provider string `json:"provider"  validate:"omitempty,max=32"`
}

// MindmapRequest is the request body of POST /api/mindmaps.
type MindmapRequest struct {
	SourceInput
	MaxDepth int    `json:"max_depth" validate:"omitempty,min=2,max=8"`
	MaxNodes int    `json:"max_nodes" validate:"omitempty,min=10,max=200"`
	Title    string `json:"title"     validate:"omitempty,max=200"`
	Provider string `json:"provider"  validate:"omitempty,max=32"`
}

// GradeItemRequest is one answer to grade.
type GradeItemRequest struct {
	ID             int    `json:"id"`
	Question       string `json:"question"        validate:"required"`
	ExpectedAnswer string `json:"expected_answer" validate:"required"`
	UserAnswer     string `json:"user_answer"`
}

// GradeRequest is the request body of POST /api/quizzes/grade.
type GradeRequest struct {
	Items    []GradeItemRequest `json:"items"    validate:"max=50,dive"`
	Provider string             `json:"provider" validate:"omitempty,max=32"`
}

// SummaryRequest is the request body of POST /api/summaries.
type SummaryRequest struct {
	SourceInput
	Focus    string `json:"focus"    validate:"omitempty,max=200"`
	Length   string `json:"length"   validate:"omitempty,oneof=short medium long"`
	Provider string `json:"provider" validate:"omitempty,max=32"`
}

// ChatRequest is the request body of POST /api/chat.
type ChatRequest struct {
	Message  string `json:"message"  validate:"required,max=4000"`
	Provider string `json:"provider" validate:"omitempty,max=32"`
}

// SectionSummaryRequest is the request body of
// POST /api/mindmaps/sections/summary.
type SectionSummaryRequest struct {
	SourceInput
	Topic    string `json:"topic"    validate:"required,max=200"`
	Size     string `json:"size"     validate:"omitempty,oneof=small medium"`
	Provider string `json:"provider" validate:"omitempty,max=32"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

func gradeItems(items []GradeItemRequest) []generation.GradeItem {
	out := make([]generation.GradeItem, len(items))
	for i, item := range items {
		out[i] = generation.GradeItem{
			ID:             item.ID,
			Question:       item.Question,
			ExpectedAnswer: item.ExpectedAnswer,
			UserAnswer:     item.UserAnswer,
		}
	}
	return out
}
