package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen/internal/redact"
)

// Allowed parameter ranges.
const (
	MinQuestions = 1
	MaxQuestions = 50
	MinCards     = 1
	MaxCards     = 100
	MinDepth     = 2
	MaxDepth     = 8
	MinNodes     = 10
	MaxNodes     = 200
)

const (
	// refineDepthTarget is the depth a mind map should reach before it is
	// considered detailed enough to skip refinement.
	refineDepthTarget = 4

	// refineBudgetBonus is added to the mind-map token budget for the
	// refinement call.
	refineBudgetBonus = 900

	defaultMindmapTitle = "Mind Map"
)

// Limits holds the per-kind source character budgets.
type Limits struct {
	Quiz       int
	Flashcards int
	Mindmap    int
	Summary    int
	Section    int
}

// Timeouts holds the per-call wall-clock bounds for each kind.
type Timeouts struct {
	Quiz       time.Duration
	Flashcards time.Duration
	Mindmap    time.Duration
	Grade      time.Duration
	Summary    time.Duration
	Chat       time.Duration
	Section    time.Duration
}

// Options configures a Service.
type Options struct {
	Limits   Limits
	Timeouts Timeouts
	// Diagnostics attaches redacted raw-output excerpts to failures and logs.
	Diagnostics bool
}

// DefaultOptions returns the budgets used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Limits: Limits{
			Quiz:       8000,
			Flashcards: 8000,
			Mindmap:    8000,
			Summary:    15000,
			Section:    8000,
		},
		Timeouts: Timeouts{
			Quiz:       600 * time.Second,
			Flashcards: 300 * time.Second,
			Mindmap:    300 * time.Second,
			Grade:      180 * time.Second,
			Summary:    180 * time.Second,
			Chat:       120 * time.Second,
			Section:    180 * time.Second,
		},
	}
}

// Service exposes the artifact generation operations. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	router *Router
	logger *slog.Logger
	opts   Options
}

// NewService creates a Service that routes calls through router.
func NewService(router *Router, logger *slog.Logger, opts Options) (*Service, error) {
	if router == nil {
		return nil, errors.New("router cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Service{
		router: router,
		logger: logger.With("component", "generation"),
		opts:   opts,
	}, nil
}

// requestLogger returns a logger scoped to one request.
func (s *Service) requestLogger(kind ArtifactKind, p Provider) *slog.Logger {
	return s.logger.With(
		"request_id", uuid.NewString(),
		"kind", string(kind),
		"provider", p.Name(),
	)
}

// prepare selects the provider and bounds the source text for a request.
func (s *Service) prepare(kind ArtifactKind, override, sourceText string, limit int) (Provider, string, error) {
	p, err := s.router.Select(kind, override)
	if err != nil {
		return nil, "", err
	}
	source := PrepareSource(sourceText, limit)
	if source == "" {
		return nil, "", ErrEmptySource
	}
	return p, source, nil
}

// GenerateQuiz generates a quiz of exactly req.QuestionCount questions.
func (s *Service) GenerateQuiz(ctx context.Context, req QuizRequest) (*Quiz, error) {
	if req.QuestionCount < MinQuestions || req.QuestionCount > MaxQuestions {
		return nil, fmt.Errorf("%w: question count must be between %d and %d",
			ErrParameter, MinQuestions, MaxQuestions)
	}
	mode := req.Mode
	switch mode {
	case "":
		mode = QuizModeOptions
	case QuizModeOptions, QuizModeTheory, QuizModeBoth:
	default:
		return nil, fmt.Errorf("%w: unknown quiz mode %q", ErrParameter, mode)
	}

	p, source, err := s.prepare(KindQuiz, req.Provider, req.SourceText, s.opts.Limits.Quiz)
	if err != nil {
		return nil, err
	}
	prompt, err := quizPrompt(source, req.QuestionCount, mode)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindQuiz, p)
	logger.InfoContext(ctx, "generating quiz",
		"question_count", req.QuestionCount,
		"mode", string(mode),
		"source_length", len(source))

	quiz, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[*Quiz]{
		call: Call{
			Kind:        KindQuiz,
			Prompt:      prompt,
			System:      jsonSystemPrompt,
			TokenBudget: quizBudget(req.QuestionCount),
			Temperature: 0.2,
			Schema:      quizSchema(req.QuestionCount, mode),
			Timeout:     s.opts.Timeouts.Quiz,
		},
		count:       req.QuestionCount,
		strictRetry: true,
		parse: func(raw string) (*Quiz, error) {
			payload, err := ExtractJSON(raw)
			if err != nil {
				return nil, err
			}
			return validateQuiz(payload, req.QuestionCount, mode)
		},
	})
	if err != nil {
		return nil, err
	}

	quiz.Provider = p.Name()
	return quiz, nil
}

// GenerateFlashcards generates a deck of exactly req.CardCount cards.
func (s *Service) GenerateFlashcards(ctx context.Context, req FlashcardsRequest) (*FlashcardSet, error) {
	if req.CardCount < MinCards || req.CardCount > MaxCards {
		return nil, fmt.Errorf("%w: card count must be between %d and %d",
			ErrParameter, MinCards, MaxCards)
	}

	p, source, err := s.prepare(KindFlashcards, req.Provider, req.SourceText, s.opts.Limits.Flashcards)
	if err != nil {
		return nil, err
	}
	prompt, err := flashcardsPrompt(source, req.CardCount)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindFlashcards, p)
	logger.InfoContext(ctx, "generating flashcards",
		"card_count", req.CardCount,
		"source_length", len(source))

	set, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[*FlashcardSet]{
		call: Call{
			Kind:        KindFlashcards,
			Prompt:      prompt,
			System:      jsonSystemPrompt,
			TokenBudget: flashcardsBudget(req.CardCount),
			Temperature: 0.1,
			Schema:      flashcardsSchema(req.CardCount),
			Timeout:     s.opts.Timeouts.Flashcards,
		},
		count:       req.CardCount,
		strictRetry: true,
		parse: func(raw string) (*FlashcardSet, error) {
			payload, err := ExtractJSON(raw)
			if err != nil {
				return nil, err
			}
			return validateFlashcards(payload, req.CardCount)
		},
	})
	if err != nil {
		return nil, err
	}

	set.Provider = p.Name()
	return set, nil
}

// mindmapDraft is a parsed, normalized and pruned mind map.
type mindmapDraft struct {
	title string
	root  *Node
}

func parseMindmap(raw string, maxDepth, maxNodes int) (*mindmapDraft, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	title, rawRoot, err := validateMindmapPayload(payload)
	if err != nil {
		return nil, err
	}

	root := NormalizeTree(rawRoot)
	PruneDepth(root, maxDepth)
	PruneNodes(root, maxNodes)
	return &mindmapDraft{title: title, root: root}, nil
}

// GenerateMindmap generates a mind map within req.MaxDepth and
// req.MaxNodes. A shallow first result is refined once on the same
// provider; refinement only ever adds nodes.
func (s *Service) GenerateMindmap(ctx context.Context, req MindmapRequest) (*MindMap, error) {
	if req.MaxDepth < MinDepth || req.MaxDepth > MaxDepth {
		return nil, fmt.Errorf("%w: max depth must be between %d and %d", ErrParameter, MinDepth, MaxDepth)
	}
	if req.MaxNodes < MinNodes || req.MaxNodes > MaxNodes {
		return nil, fmt.Errorf("%w: max nodes must be between %d and %d", ErrParameter, MinNodes, MaxNodes)
	}

	p, source, err := s.prepare(KindMindmap, req.Provider, req.SourceText, s.opts.Limits.Mindmap)
	if err != nil {
		return nil, err
	}
	prompt, err := mindmapPrompt(source, req.MaxDepth, req.MaxNodes, req.Title)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindMindmap, p)
	logger.InfoContext(ctx, "generating mind map",
		"max_depth", req.MaxDepth,
		"max_nodes", req.MaxNodes,
		"source_length", len(source))

	budget := mindmapBudget(req.MaxNodes)
	call := Call{
		Kind:        KindMindmap,
		Prompt:      prompt,
		System:      jsonSystemPrompt,
		TokenBudget: budget,
		Temperature: 0.2,
		Schema:      mindmapSchema(),
		Timeout:     s.opts.Timeouts.Mindmap,
	}
	draft, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[*mindmapDraft]{
		call:        call,
		strictRetry: true,
		parse: func(raw string) (*mindmapDraft, error) {
			return parseMindmap(raw, req.MaxDepth, req.MaxNodes)
		},
	})
	if err != nil {
		return nil, err
	}

	mm := &MindMap{
		Title:    firstNonEmpty(draft.title, strings.TrimSpace(req.Title), defaultMindmapTitle),
		Root:     draft.root,
		Provider: p.Name(),
	}

	if needsRefinement(mm.Root, req.MaxDepth, req.MaxNodes) {
		mm.Root = s.refineMindmap(ctx, logger, p, call, source, mm, req)
	}

	depth, count := TreeStats(mm.Root)
	logger.InfoContext(ctx, "mind map generated", "depth", depth, "node_count", count)
	return mm, nil
}

// refineMindmap makes one refinement call and merges its additions into
// the current tree. Any failure keeps the current tree.
func (s *Service) refineMindmap(
	ctx context.Context,
	logger *slog.Logger,
	p Provider,
	base Call,
	source string,
	current *MindMap,
	req MindmapRequest,
) *Node {
	depth, count := TreeStats(current.Root)
	logger.InfoContext(ctx, "refining mind map", "depth", depth, "node_count", count)

	prompt, err := refinePrompt(source, current, req.MaxDepth, req.MaxNodes)
	if err != nil {
		logger.InfoContext(ctx, "mind map refinement skipped", "error", err)
		return current.Root
	}

	call := base
	call.Prompt = prompt
	call.TokenBudget = min(maxTokenBudget, base.TokenBudget+refineBudgetBonus)

	refined, _, err := attemptOnce(ctx, p, call, func(raw string) (*mindmapDraft, error) {
		return parseMindmap(raw, req.MaxDepth, req.MaxNodes)
	})
	if err != nil {
		logger.InfoContext(ctx, "mind map refinement failed, keeping first result", "error", redact.Error(err))
		return current.Root
	}

	return MergeRefinement(current.Root, refined.root, req.MaxDepth, req.MaxNodes)
}

// GradeTheoryAnswers scores free-text answers in [0, 1]. Grading is best
// effort: entries the grader returns malformed are dropped, not retried.
func (s *Service) GradeTheoryAnswers(ctx context.Context, req GradeRequest) (*GradeSet, error) {
	p, err := s.router.Select(KindGrade, req.Provider)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return &GradeSet{Grades: []Grade{}, Provider: p.Name()}, nil
	}

	prompt, err := gradePrompt(req.Items)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindGrade, p)
	logger.InfoContext(ctx, "grading theory answers", "item_count", len(req.Items))

	grades, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[[]Grade]{
		call: Call{
			Kind:        KindGrade,
			Prompt:      prompt,
			System:      gradeSystemPrompt,
			TokenBudget: gradeBudget,
			Temperature: 0,
			Schema:      gradeSchema(len(req.Items)),
			Timeout:     s.opts.Timeouts.Grade,
		},
		strictRetry: true,
		parse: func(raw string) ([]Grade, error) {
			payload, err := ExtractJSON(raw)
			if err != nil {
				return nil, err
			}
			return validateGrades(payload)
		},
	})
	if err != nil {
		return nil, err
	}

	return &GradeSet{Grades: grades, Provider: p.Name()}, nil
}

// Summarize produces a bullet summary of the source text.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	length := req.Length
	if length == "" {
		length = SummaryMedium
	}
	bullets, budget, ok := summaryShape(length)
	if !ok {
		return nil, fmt.Errorf("%w: unknown summary length %q", ErrParameter, req.Length)
	}

	p, source, err := s.prepare(KindSummary, req.Provider, req.SourceText, s.opts.Limits.Summary)
	if err != nil {
		return nil, err
	}
	prompt, err := summaryPrompt(source, req.Focus, bullets)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindSummary, p)
	logger.InfoContext(ctx, "summarizing", "length", string(length), "source_length", len(source))

	text, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[string]{
		call: Call{
			Kind:        KindSummary,
			Prompt:      prompt,
			System:      summarySystemPrompt,
			TokenBudget: budget,
			Temperature: 0.3,
			Timeout:     s.opts.Timeouts.Summary,
		},
		parse: validateText,
	})
	if err != nil {
		return nil, err
	}

	return &Summary{Summary: text, Provider: p.Name()}, nil
}

// Answer replies to a study-assistant question.
func (s *Service) Answer(ctx context.Context, req ChatRequest) (*ChatAnswer, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrParameter)
	}

	p, err := s.router.Select(KindChat, req.Provider)
	if err != nil {
		return nil, err
	}
	prompt, err := chatPrompt(message)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindChat, p)
	logger.InfoContext(ctx, "answering chat message", "message_length", len(message))

	text, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[string]{
		call: Call{
			Kind:        KindChat,
			Prompt:      prompt,
			System:      chatSystemPrompt,
			TokenBudget: chatBudget,
			Temperature: 0.3,
			Timeout:     s.opts.Timeouts.Chat,
		},
		parse: validateText,
	})
	if err != nil {
		return nil, err
	}

	return &ChatAnswer{Answer: text, Provider: p.Name()}, nil
}

// SummarizeSection explains one mind-map topic from the source text.
func (s *Service) SummarizeSection(ctx context.Context, req SectionSummaryRequest) (*SectionSummary, error) {
	size := req.Size
	if size == "" {
		size = SectionSmall
	}
	budget, ok := sectionBudget(size)
	if !ok {
		return nil, fmt.Errorf("%w: unknown section size %q", ErrParameter, req.Size)
	}

	p, source, err := s.prepare(KindSectionSummary, req.Provider, req.SourceText, s.opts.Limits.Section)
	if err != nil {
		return nil, err
	}
	prompt, err := sectionPrompt(source, req.Topic, size)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(KindSectionSummary, p)
	logger.InfoContext(ctx, "summarizing mind map section", "size", string(size), "source_length", len(source))

	text, err := runAttempts(ctx, logger, s.opts.Diagnostics, p, attemptPlan[string]{
		call: Call{
			Kind:        KindSectionSummary,
			Prompt:      prompt,
			TokenBudget: budget,
			Temperature: 0.3,
			Timeout:     s.opts.Timeouts.Section,
		},
		parse: validateText,
	})
	if err != nil {
		return nil, err
	}

	return &SectionSummary{Summary: text, Provider: p.Name()}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
