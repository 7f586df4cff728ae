package generation

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPrepareSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		limit    int
		expected string
	}{
		{name: "collapses whitespace", text: "  a\n\n b\t\tc  ", limit: 100, expected: "a b c"},
		{name: "truncates", text: "abcdef", limit: 3, expected: "abc"},
		{name: "no limit", text: "abcdef", limit: 0, expected: "abcdef"},
		{name: "blank", text: " \n\t", limit: 10, expected: ""},
		{name: "multi-byte runes are kept whole", text: "ñañaña", limit: 3, expected: "ñañ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrepareSource(tt.text, tt.limit)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTokenBudgets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 600, quizBudget(1))
	assert.Equal(t, 2200, quizBudget(10))
	assert.Equal(t, 4096, quizBudget(50))

	assert.Equal(t, 600, flashcardsBudget(1))
	assert.Equal(t, 1600, flashcardsBudget(20))
	assert.Equal(t, 2048, flashcardsBudget(100))

	assert.Equal(t, 900, mindmapBudget(10))
	assert.Equal(t, 2250, mindmapBudget(50))
	assert.Equal(t, 4096, mindmapBudget(200))

	assert.Equal(t, 1080, escalateBudget(600))
	assert.Equal(t, 4096, escalateBudget(4096))
	assert.Equal(t, 4096, escalateBudget(3000))

	bullets, budget, ok := summaryShape(SummaryShort)
	assert.True(t, ok)
	assert.Equal(t, 4, bullets)
	assert.Equal(t, 220, budget)

	_, ok = sectionBudget("large")
	assert.False(t, ok)
}
