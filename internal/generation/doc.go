// Package generation turns free-form LLM output into schema-valid study
// artifacts: quizzes, flashcard decks, mind maps, answer grades, summaries
// and chat answers.
//
// The package owns the algorithmic core of the service and is independent of
// any particular LLM vendor. Vendors plug in through the Provider interface
// (see internal/platform/ollama, internal/platform/openai and
// internal/platform/gemini), and a Router picks one per request by fixed
// precedence.
//
// Pipeline for one request:
//
//  1. PrepareSource collapses whitespace and truncates the source text to a
//     per-kind character budget.
//  2. The instruction text is rendered from the embedded templates in
//     prompts/.
//  3. The retry controller calls the provider, recovers a JSON payload with
//     ExtractJSON and validates it into typed results, making at most two
//     attempts. The second attempt uses a stricter prompt that includes the
//     invalid output of the first.
//  4. Mind maps are normalized, pruned to their depth and node budgets and
//     optionally deepened by one add-only refinement call.
//
// Errors are reported through the sentinels in errors.go so callers can use
// errors.Is to map failures onto transport-level responses.
package generation
