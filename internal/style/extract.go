package style

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?i:json)?(.*?)```")

// ExtractJSON isolates the JSON object in a model response that may be wrapped in
// prose or markdown code fences. It reports false only for empty input.
//
// Order: fenced block interior, then first '{' through last '}', then the trimmed text.
func ExtractJSON(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return strings.TrimSpace(raw[start : end+1]), true
		}
	}

	return strings.TrimSpace(raw), true
}
