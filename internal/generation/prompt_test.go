package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizPrompt_Modes(t *testing.T) {
	t.Parallel()

	options, err := quizPrompt("notes", 5, QuizModeOptions)
	require.NoError(t, err)
	assert.Contains(t, options, "Generate exactly 5 questions.")
	assert.Contains(t, options, `"answer": "A"|"B"|"C"|"D"`)
	assert.NotContains(t, options, "answer_text")

	theory, err := quizPrompt("notes", 3, QuizModeTheory)
	require.NoError(t, err)
	assert.Contains(t, theory, `"answer_text": string`)
	assert.NotContains(t, theory, `"options"`)

	both, err := quizPrompt("notes", 4, QuizModeBoth)
	require.NoError(t, err)
	assert.Contains(t, both, `"answer_text": string`)
	assert.Contains(t, both, `"options"`)
	assert.Contains(t, both, "OR")

	for _, prompt := range []string{options, theory, both} {
		assert.True(t, strings.HasSuffix(prompt, "NOTES START\nnotes\nNOTES END"))
		assert.Contains(t, prompt, "No trailing commas.")
	}
}

func TestRetryPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := retryPrompt(KindFlashcards, 7, "ORIGINAL", `{"cards": []}`)
	require.NoError(t, err)
	assert.Contains(t, prompt, "required flashcards JSON schema")
	assert.Contains(t, prompt, "You MUST return exactly 7 flashcards.")
	assert.Contains(t, prompt, "ORIGINAL TASK\nORIGINAL")
	assert.Contains(t, prompt, "INVALID OUTPUT (for reference)\n{\"cards\": []}")

	prompt, err = retryPrompt(KindMindmap, 0, "ORIGINAL", "bad")
	require.NoError(t, err)
	assert.Contains(t, prompt, "required mind map JSON schema")
	assert.NotContains(t, prompt, "You MUST return exactly")
}

func TestMindmapPrompts(t *testing.T) {
	t.Parallel()

	prompt, err := mindmapPrompt("notes", 3, 40, " Biology ")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Total nodes <= 40.")
	assert.Contains(t, prompt, "Depth <= 3")
	assert.Contains(t, prompt, "Aim for at least 3 levels")
	assert.Contains(t, prompt, "Title hint (optional): Biology")

	current := &MindMap{Title: "Cells & <Things>", Root: node("root", "Cells"), Provider: "ollama"}
	refine, err := refinePrompt("notes", current, 6, 40)
	require.NoError(t, err)
	assert.Contains(t, refine, `{"title":"Cells & <Things>","root":{"id":"root","label":"Cells","children":[]}}`)
	assert.Contains(t, refine, "Title hint (optional): Cells & <Things>")
	assert.NotContains(t, refine, `"provider"`)
	assert.Contains(t, refine, "Ensure the final map reaches at least depth 4")
	assert.Contains(t, refine, "You may ONLY add new children under existing nodes.")
}

func TestTextPrompts(t *testing.T) {
	t.Parallel()

	summary, err := summaryPrompt("text", "  exam topics ", 4)
	require.NoError(t, err)
	assert.Contains(t, summary, "Focus: exam topics.")
	assert.Contains(t, summary, "up to 4 bullet points")

	section, err := sectionPrompt("notes", "", SectionSmall)
	require.NoError(t, err)
	assert.Contains(t, section, "Topic: this topic")
	assert.Contains(t, section, "1-2 short paragraphs")

	grade, err := gradePrompt([]GradeItem{{ID: 3, Question: "Q", ExpectedAnswer: "E", UserAnswer: "U"}})
	require.NoError(t, err)
	assert.Contains(t, grade, `[{"id":3,"question":"Q","expected_answer":"E","user_answer":"U"}]`)
}
