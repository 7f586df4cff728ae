// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Provider error messages
// routinely echo request URLs, headers and API keys; this package strips those
// credentials while leaving the surrounding text readable.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// Precompiled regex patterns
var (
	// Connection strings with embedded credentials
	connCredRegex = regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/\s:@]+:[^/\s@]+@`)

	// Credentials and tokens
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	bearerRegex   = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9_\-.~+/=]{8,}`)
	// Query-string keys such as ?key=AIza... used by the Gemini REST API
	urlKeyRegex = regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey|access_token|token)=)[^&\s"']+`)
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|x-goog-api-key|authorization|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	// Vendor key shapes: OpenAI (sk-...) and Google (AIza...)
	vendorKeyRegex = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9_\-]{16,}|AIza[0-9A-Za-z_\-]{30,})\b`)
	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Stack trace fragments
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// rules are applied in order; capture group 1, when present, is kept.
	rules = []struct {
		pattern     *regexp.Regexp
		placeholder string
		keepPrefix  bool
	}{
		{connCredRegex, RedactedCredentialPlaceholder + "@", true},
		{passwordRegex, RedactedCredentialPlaceholder, false},
		{bearerRegex, RedactedKeyPlaceholder, true},
		{urlKeyRegex, RedactedKeyPlaceholder, true},
		{apiKeyRegex, RedactedKeyPlaceholder, false},
		{vendorKeyRegex, RedactedKeyPlaceholder, false},
		{jwtTokenRegex, "[REDACTED_JWT]", false},
		{stackTraceRegex, "[STACK_TRACE_REDACTED]", false},
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, rule := range rules {
		replacement := rule.placeholder
		if rule.keepPrefix {
			replacement = "${1}" + rule.placeholder
		}
		result = rule.pattern.ReplaceAllString(result, replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Snippet redacts input and truncates the result to at most limit runes.
// A non-positive limit returns an empty string.
func Snippet(input string, limit int) string {
	if limit <= 0 {
		return ""
	}

	result := String(input)
	count := 0
	for i := range result {
		if count == limit {
			return result[:i]
		}
		count++
	}
	return result
}
