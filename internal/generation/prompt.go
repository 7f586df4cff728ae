package generation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// System instructions sent alongside the rendered prompts.
const (
	jsonSystemPrompt = "You are a strict JSON generator. Output only valid JSON. " +
		"Do not output markdown or explanations."
	gradeSystemPrompt   = "You are a strict JSON grader. Output only valid JSON."
	summarySystemPrompt = "You are a study assistant that writes concise, substantive summaries of course material."
	chatSystemPrompt    = "You are Study Buddy, a friendly assistant for studying and general Q&A. " +
		"Respond naturally and helpfully. Only mention being an AI if the user asks."
)

const defaultSummaryFocus = "key insights and connections"

// renderPrompt executes the named template with data.
func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// marshalPromptJSON encodes v compactly without HTML escaping so that
// quotes and angle brackets reach the model unchanged.
func marshalPromptJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode prompt JSON: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func quizPrompt(source string, count int, mode QuizMode) (string, error) {
	return renderPrompt("quiz.tmpl", struct {
		Count  int
		Mode   string
		Source string
	}{Count: count, Mode: string(mode), Source: source})
}

func flashcardsPrompt(source string, count int) (string, error) {
	return renderPrompt("flashcards.tmpl", struct {
		Count  int
		Source string
	}{Count: count, Source: source})
}

type mindmapPromptData struct {
	MaxDepth    int
	MaxNodes    int
	DepthTarget int
	Title       string
	Source      string
	Existing    string
}

func mindmapPrompt(source string, maxDepth, maxNodes int, title string) (string, error) {
	return renderPrompt("mindmap.tmpl", mindmapPromptData{
		MaxDepth:    maxDepth,
		MaxNodes:    maxNodes,
		DepthTarget: min(maxDepth, refineDepthTarget),
		Title:       strings.TrimSpace(title),
		Source:      source,
	})
}

// refinePrompt bundles the current map verbatim and asks only for
// additional children.
func refinePrompt(source string, current *MindMap, maxDepth, maxNodes int) (string, error) {
	existing, err := marshalPromptJSON(struct {
		Title string `json:"title"`
		Root  *Node  `json:"root"`
	}{Title: current.Title, Root: current.Root})
	if err != nil {
		return "", err
	}
	return renderPrompt("mindmap_refine.tmpl", mindmapPromptData{
		MaxDepth:    maxDepth,
		MaxNodes:    maxNodes,
		DepthTarget: min(maxDepth, refineDepthTarget),
		Title:       strings.TrimSpace(current.Title),
		Source:      source,
		Existing:    existing,
	})
}

// retryPrompt wraps the original task with a stricter instruction that
// restates the required count and includes the invalid output.
func retryPrompt(kind ArtifactKind, count int, original, previous string) (string, error) {
	data := struct {
		Artifact string
		Count    int
		Unit     string
		Original string
		Previous string
	}{
		Artifact: string(kind),
		Original: original,
		Previous: previous,
	}

	switch kind {
	case KindQuiz:
		data.Count, data.Unit = count, "questions"
	case KindFlashcards:
		data.Count, data.Unit = count, "flashcards"
	case KindGrade:
		data.Artifact = "grades"
	case KindMindmap:
		data.Artifact = "mind map"
	}

	return renderPrompt("retry.tmpl", data)
}

func gradePrompt(items []GradeItem) (string, error) {
	encoded, err := marshalPromptJSON(items)
	if err != nil {
		return "", err
	}
	return renderPrompt("grade.tmpl", struct{ Items string }{Items: encoded})
}

func summaryPrompt(source, focus string, bullets int) (string, error) {
	focus = strings.TrimSpace(focus)
	if focus == "" {
		focus = defaultSummaryFocus
	}
	return renderPrompt("summary.tmpl", struct {
		Focus   string
		Bullets int
		Source  string
	}{Focus: focus, Bullets: bullets, Source: source})
}

func chatPrompt(message string) (string, error) {
	return renderPrompt("chat.tmpl", struct{ Message string }{Message: message})
}

func sectionPrompt(source, topic string, size SectionSize) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "this topic"
	}
	instruction := "Write 1-2 short paragraphs (roughly 80-140 words)."
	if size == SectionMedium {
		instruction = "Write 2-4 short paragraphs (roughly 180-260 words)."
	}
	return renderPrompt("section.tmpl", struct {
		Topic           string
		SizeInstruction string
		Source          string
	}{Topic: topic, SizeInstruction: instruction, Source: source})
}
