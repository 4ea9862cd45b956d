// Package jsonx finds and normalizes JSON inside model output.
package jsonx

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Source tells how a JSON value was recovered from text.
type Source string

const (
	SourceDirect    Source = "direct"
	SourceExtracted Source = "extracted"
)

var requestMarkers = regexp.MustCompile(`(?i)(json\s+only|only\s+json|return\s+(strict\s+|valid\s+)?json|output\s+(strict\s+|valid\s+)?json|respond\s+(only\s+)?(in|with)\s+json|strict\s+json|in\s+json\s+format)`)

// quotedJSON matches a quoted JSON shape, as in: format: "{\"title\": ...}".
// The opener must be followed by a key or a nested value, so quoted prose
// like "[Before/After]" does not count.
var quotedJSON = regexp.MustCompile(`["'\x60]\s*(?:\{\s*\\?["'}]|\[\s*(?:[{\]]|\\?"))`)

// Requested reports whether the caller's text asks for machine-readable output.
func Requested(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if requestMarkers.MatchString(t) {
		return true
	}
	if t[0] == '{' || t[0] == '[' {
		return true
	}
	return quotedJSON.MatchString(t)
}

// StripFences removes a markdown code fence wrapping the whole text.
// Handles ```json, ``` and other language tags.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline == -1 {
		return strings.TrimSpace(strings.Trim(trimmed, "`"))
	}

	body := trimmed[firstNewline+1:]
	if lastFence := strings.LastIndex(body, "```"); lastFence != -1 {
		body = body[:lastFence]
	}
	return strings.TrimSpace(body)
}

// Extract returns the minimized JSON found in text: first the whole text
// (fences stripped), then the first balanced object or array that parses.
func Extract(text string) (string, Source, bool) {
	cleaned := StripFences(text)

	if out, ok := compact(cleaned); ok {
		return out, SourceDirect, true
	}

	for start := 0; start < len(cleaned); {
		candidate, end, ok := balanced(cleaned, start)
		if !ok {
			break
		}
		if out, ok := compact(candidate); ok {
			return out, SourceExtracted, true
		}
		start = end
	}

	return "", "", false
}

// balanced finds the first top-level {...} or [...] starting at or after
// from, ignoring brackets inside strings. It returns the substring and the
// index where the next search should resume.
func balanced(s string, from int) (string, int, bool) {
	start := strings.IndexAny(s[from:], "{[")
	if start == -1 {
		return "", 0, false
	}
	start += from

	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				// Mismatched closer: this start can't be a JSON value.
				return "", start + 1, start+1 < len(s)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}

	// Unterminated: retry from the next opener.
	return "", start + 1, start+1 < len(s)
}

func compact(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return "", false
	}
	// Bare scalars are valid JSON but not a structured answer.
	if s[0] != '{' && s[0] != '[' {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return "", false
	}
	return buf.String(), true
}
