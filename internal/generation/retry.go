package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studygen/internal/redact"
)

const (
	// maxAttempts caps the generate, extract, validate loop per request.
	maxAttempts = 2

	// retryBudgetFactor scales the token budget of the second attempt.
	retryBudgetFactor = 1.8

	// maxTokenBudget caps every token budget.
	maxTokenBudget = 4096

	// excerptLimit bounds the raw output attached to diagnostics.
	excerptLimit = 800
)

// attemptPlan describes one request to the retry controller.
type attemptPlan[T any] struct {
	call Call
	// count is restated by the retry prompt; zero when the kind has no count.
	count int
	// strictRetry selects the retry prompt for attempt 2. Free-text kinds
	// resend the original prompt instead.
	strictRetry bool
	// parse turns raw provider output into a typed result.
	parse func(raw string) (T, error)
}

// runAttempts drives a request through at most maxAttempts provider calls.
//
// Attempt 1 sends the base prompt. A provider, parse or validation failure
// moves to attempt 2, which sends the retry prompt carrying the invalid
// output and an escalated token budget. Configuration and parameter errors,
// and cancellation of ctx, end the loop immediately. When both attempts
// fail the result is a *FailureError.
func runAttempts[T any](ctx context.Context, logger *slog.Logger, diagnostics bool, p Provider, plan attemptPlan[T]) (T, error) {
	var zero T
	var lastRaw string
	var lastErr error

	call := plan.call
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s generation cancelled: %w", call.Kind, err)
		}

		if attempt > 1 {
			call.TokenBudget = escalateBudget(plan.call.TokenBudget)
			if plan.strictRetry {
				prompt, err := retryPrompt(call.Kind, plan.count, plan.call.Prompt, previousOutput(lastRaw))
				if err != nil {
					return zero, err
				}
				call.Prompt = prompt
			}
		}

		logger.DebugContext(ctx, "calling provider",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"token_budget", call.TokenBudget)

		result, raw, err := attemptOnce(ctx, p, call, plan.parse)
		if raw != "" {
			lastRaw = raw
		}
		if err == nil {
			logger.InfoContext(ctx, "generation attempt succeeded", "attempt", attempt)
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s generation cancelled: %w", call.Kind, ctx.Err())
		}
		if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrParameter) {
			return zero, err
		}

		attrs := []any{
			"attempt", attempt,
			"error", redact.Error(err),
		}
		if diagnostics && raw != "" {
			attrs = append(attrs, "raw_excerpt", redact.Snippet(raw, excerptLimit))
		}
		logger.WarnContext(ctx, "generation attempt failed", attrs...)
	}

	failure := &FailureError{Kind: call.Kind, Attempts: maxAttempts, Err: lastErr}
	if diagnostics {
		failure.Excerpt = redact.Snippet(lastRaw, excerptLimit)
	}
	logger.ErrorContext(ctx, "generation failed", "attempts", maxAttempts, "error", redact.Error(lastErr))
	return zero, failure
}

// attemptOnce performs a single provider call under the call timeout and
// parses its output.
func attemptOnce[T any](ctx context.Context, p Provider, call Call, parse func(string) (T, error)) (T, string, error) {
	var zero T

	callCtx := ctx
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	raw, err := p.Generate(callCtx, call)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			var providerErr *ProviderError
			if !errors.As(err, &providerErr) {
				err = &ProviderError{Provider: p.Name(), Kind: ProviderErrorTimeout, Err: err}
			}
		}
		return zero, "", err
	}

	result, err := parse(raw)
	if err != nil {
		return zero, raw, err
	}
	return result, raw, nil
}

// escalateBudget returns the token budget for the retry attempt.
func escalateBudget(budget int) int {
	escalated := int(float64(budget) * retryBudgetFactor)
	return min(maxTokenBudget, max(budget, escalated))
}

func previousOutput(raw string) string {
	if raw == "" {
		return "(no output)"
	}
	return raw
}
