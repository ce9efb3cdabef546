package llm

import (
	"regexp"
	"strings"
)

var (
	arrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// RecoverArray extracts a JSON array from provider output that may wrap it
// in markdown fences or prose. Returns false when no array span exists.
func RecoverArray(content string) (string, bool) {
	content = stripFences(content)
	if strings.HasPrefix(content, "[") {
		return content, true
	}
	if m := arrayRe.FindString(content); m != "" {
		return m, true
	}
	return "", false
}

// RecoverObject is RecoverArray for a single JSON object.
func RecoverObject(content string) (string, bool) {
	content = stripFences(content)
	if strings.HasPrefix(content, "{") {
		return content, true
	}
	if m := objectRe.FindString(content); m != "" {
		return m, true
	}
	return "", false
}

func stripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
