package generation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// validateQuiz converts a parsed payload into a Quiz with exactly count
// questions whose shapes match mode.
func validateQuiz(payload any, count int, mode QuizMode) (*Quiz, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: quiz JSON must be an object", ErrValidation)
	}

	items, ok := obj["questions"].([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: quiz JSON must include a non-empty questions array", ErrValidation)
	}
	if len(items) != count {
		return nil, fmt.Errorf("%w: quiz must include exactly %d questions, got %d",
			ErrValidation, count, len(items))
	}

	quiz := &Quiz{
		Title:     stringOr(obj["title"], "Quiz"),
		Questions: make([]Question, 0, len(items)),
	}
	for i, item := range items {
		q, err := validateQuestion(item, i, mode)
		if err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

func validateQuestion(item any, index int, mode QuizMode) (Question, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Question{}, fmt.Errorf("%w: question %d must be an object", ErrValidation, index+1)
	}

	q := Question{
		ID:          idOrPosition(obj["id"], index),
		Question:    asString(obj["question"]),
		Explanation: asString(obj["explanation"]),
	}
	if q.Question == "" {
		return Question{}, fmt.Errorf("%w: question %d has empty question text", ErrValidation, index+1)
	}

	questionType := QuestionTypeOptions
	switch mode {
	case QuizModeTheory:
		questionType = QuestionTypeTheory
	case QuizModeBoth:
		if !hasOptions(obj["options"]) {
			questionType = QuestionTypeTheory
		}
	}
	q.Type = questionType

	if questionType == QuestionTypeTheory {
		q.AnswerText = asString(obj["answer_text"])
		if q.AnswerText == "" {
			return Question{}, fmt.Errorf("%w: theory question %d must include answer_text", ErrValidation, index+1)
		}
		return q, nil
	}

	options, err := validateOptions(obj["options"], index)
	if err != nil {
		return Question{}, err
	}
	q.Options = options

	q.Answer = strings.ToUpper(asString(obj["answer"]))
	if !isOptionLabel(q.Answer) {
		return Question{}, fmt.Errorf("%w: question %d answer must be one of A, B, C, D", ErrValidation, index+1)
	}

	return q, nil
}

// hasOptions reports whether a both-mode item carries an options list. A
// missing key, null and an empty array all mark a theory item.
func hasOptions(raw any) bool {
	items, ok := raw.([]any)
	return raw != nil && (!ok || len(items) > 0)
}

func validateOptions(raw any, index int) ([]Option, error) {
	items, ok := raw.([]any)
	if !ok || len(items) != len(OptionLabels) {
		return nil, fmt.Errorf("%w: question %d must have exactly %d options",
			ErrValidation, index+1, len(OptionLabels))
	}

	seen := make(map[string]bool, len(items))
	options := make([]Option, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: question %d has a malformed option", ErrValidation, index+1)
		}
		opt := Option{
			Label: strings.ToUpper(asString(obj["label"])),
			Text:  asString(obj["text"]),
		}
		if !isOptionLabel(opt.Label) || seen[opt.Label] {
			return nil, fmt.Errorf("%w: question %d option labels must be A, B, C, D", ErrValidation, index+1)
		}
		if opt.Text == "" {
			return nil, fmt.Errorf("%w: question %d option %s has empty text", ErrValidation, index+1, opt.Label)
		}
		seen[opt.Label] = true
		options = append(options, opt)
	}

	return options, nil
}

// validateFlashcards converts a parsed payload into a deck of exactly count
// cards.
func validateFlashcards(payload any, count int) (*FlashcardSet, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: flashcards JSON must be an object", ErrValidation)
	}

	items, ok := obj["cards"].([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: flashcards JSON must include a non-empty cards array", ErrValidation)
	}
	if len(items) != count {
		return nil, fmt.Errorf("%w: flashcards must include exactly %d cards, got %d",
			ErrValidation, count, len(items))
	}

	set := &FlashcardSet{
		Title: stringOr(obj["title"], "Flashcards"),
		Cards: make([]Card, 0, len(items)),
	}
	for i, item := range items {
		card, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: card %d must be an object", ErrValidation, i+1)
		}
		c := Card{
			ID:    idOrPosition(card["id"], i),
			Front: asString(card["front"]),
			Back:  asString(card["back"]),
		}
		if c.Front == "" || c.Back == "" {
			return nil, fmt.Errorf("%w: card %d must include front and back", ErrValidation, i+1)
		}
		set.Cards = append(set.Cards, c)
	}

	return set, nil
}

// validateMindmapPayload checks the top-level mind-map shape and returns the
// raw title and root for normalization.
func validateMindmapPayload(payload any) (string, map[string]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: mind map JSON must be an object", ErrValidation)
	}
	root, ok := obj["root"].(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: mind map JSON must include a root object", ErrValidation)
	}
	return asString(obj["title"]), root, nil
}

// validateGrades recovers every well-formed grade from a parsed payload.
// Entries without a numeric id or score are dropped; scores are clamped to
// [0, 1].
func validateGrades(payload any) ([]Grade, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: grades JSON must be an object", ErrValidation)
	}
	items, ok := obj["grades"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: grader response missing grades array", ErrValidation)
	}

	grades := make([]Grade, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := asInt(entry["id"])
		if !ok {
			continue
		}
		score, ok := asFloat(entry["score"])
		if !ok {
			continue
		}
		grades = append(grades, Grade{ID: id, Score: clamp01(score)})
	}

	return grades, nil
}

// validateText accepts any non-empty free-text output.
func validateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: response was empty", ErrValidation)
	}
	return text, nil
}

func isOptionLabel(s string) bool {
	for _, label := range OptionLabels {
		if s == label {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// idOrPosition returns the numeric id in v, or the 1-based position.
func idOrPosition(v any, index int) int {
	if id, ok := asInt(v); ok {
		return id
	}
	return index + 1
}

func stringOr(v any, fallback string) string {
	if s := asString(v); s != "" {
		return s
	}
	return fallback
}

// asString returns a trimmed string for string and numeric JSON values.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// asInt accepts integral JSON numbers and numeric strings within the
// int32 range.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < math.MinInt32 || t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 32)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// asFloat accepts finite JSON numbers and numeric strings.
func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
