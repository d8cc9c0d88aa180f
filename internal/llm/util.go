// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers and conversational
// preamble or trailing text around the first JSON value in a response.
// Text with no recognizable JSON value is returned trimmed.
func CleanJSONBlock(text string) string {
	text = stripCodeFence(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var extracted string
	if text[start] == '{' {
		extracted = extractJSONObject(text[start:])
	} else {
		extracted = extractJSONArray(text[start:])
	}
	if extracted == "" {
		return text
	}
	return extracted
}

func stripCodeFence(text string) string {
	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// extractJSONObject returns the balanced object at the start of text, or ""
func extractJSONObject(text string) string {
	if !strings.HasPrefix(text, "{") {
		return ""
	}
	return extractBalanced(text)
}

// extractJSONArray returns the balanced array at the start of text, or ""
func extractJSONArray(text string) string {
	if !strings.HasPrefix(text, "[") {
		return ""
	}
	return extractBalanced(text)
}

// extractBalanced scans from the opening bracket at text[0] to its matching
// close, skipping brackets inside string literals.
func extractBalanced(text string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// ExtractJSONObject finds the first valid JSON object anywhere in text
func ExtractJSONObject(text string) (string, bool) {
	return extractFirstValid(text, '{', extractJSONObject)
}

// ExtractJSONArray finds the first valid JSON array anywhere in text
func ExtractJSONArray(text string) (string, bool) {
	return extractFirstValid(text, '[', extractJSONArray)
}

func extractFirstValid(text string, open byte, extract func(string) string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		if candidate := extract(text[i:]); candidate != "" && json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// SanitizeObject reduces a model response to a JSON object. Responses with
// no recoverable object yield "{}".
func SanitizeObject(text string) string {
	if obj, ok := ExtractJSONObject(stripCodeFence(strings.TrimSpace(text))); ok {
		return obj
	}
	return "{}"
}

// SanitizeArray reduces a model response to a JSON array. Responses with no
// recoverable array yield "[]".
func SanitizeArray(text string) string {
	if arr, ok := ExtractJSONArray(stripCodeFence(strings.TrimSpace(text))); ok {
		return arr
	}
	return "[]"
}
