package generation

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRegex   = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")
	fenceMarkerRegex   = regexp.MustCompile("(?i)```(?:json)?")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	smartQuoteReplacer = strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
)

// ExtractJSON recovers a JSON payload from raw model output.
//
// It strips Markdown fences, repairs smart quotes and trailing commas, and
// tries a direct parse. If that fails it parses the first balanced {...}
// object found in the text, which tolerates prose around the payload.
// ErrParse is returned when neither succeeds.
func ExtractJSON(raw string) (any, error) {
	cleaned := repairJSON(stripCodeFences(raw))

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return payload, nil
	}

	candidate, ok := firstBalancedObject(cleaned)
	if ok {
		if err := json.Unmarshal([]byte(repairJSON(candidate)), &payload); err == nil {
			return payload, nil
		}
	}

	return nil, ErrParse
}

// stripCodeFences returns the body of the first fenced block, or the text
// with stray fence markers removed.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencedBlockRegex.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = fenceMarkerRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
}

// repairJSON fixes the mistakes models make most often.
func repairJSON(s string) string {
	s = smartQuoteReplacer.Replace(s)
	return trailingCommaRegex.ReplaceAllString(s, "$1")
}

// firstBalancedObject scans s once and returns the first substring whose
// opening brace is closed at depth zero. Braces inside string literals are
// ignored, honoring backslash escapes.
func firstBalancedObject(s string) (string, bool) {
	inString := false
	escaped := false
	depth := 0
	start := -1

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
