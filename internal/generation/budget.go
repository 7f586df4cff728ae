package generation

import "strings"

// PrepareSource collapses every whitespace run in text to a single space,
// trims it and truncates it to at most limit characters. A non-positive
// limit disables truncation. Truncation never splits a multi-byte rune.
func PrepareSource(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if limit <= 0 {
		return normalized
	}

	count := 0
	for i := range normalized {
		if count == limit {
			return normalized[:i]
		}
		count++
	}
	return normalized
}

// Token budgets for calls that do not scale with a count.
const (
	gradeBudget = 512
	chatBudget  = 800
)

func quizBudget(questions int) int {
	return max(600, min(maxTokenBudget, 220*questions))
}

func flashcardsBudget(cards int) int {
	return min(2048, max(600, 80*cards))
}

func mindmapBudget(maxNodes int) int {
	return min(maxTokenBudget, max(900, 45*maxNodes))
}

// summaryShape returns the bullet count and token budget for length.
func summaryShape(length SummaryLength) (bullets, budget int, ok bool) {
	switch length {
	case SummaryShort:
		return 4, 220, true
	case SummaryMedium:
		return 6, 450, true
	case SummaryLong:
		return 10, 900, true
	default:
		return 0, 0, false
	}
}

func sectionBudget(size SectionSize) (int, bool) {
	switch size {
	case SectionSmall:
		return 260, true
	case SectionMedium:
		return 520, true
	default:
		return 0, false
	}
}
