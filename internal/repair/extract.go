package repair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```[A-Za-z]*")

// ExtractJSON strips markdown code fences and returns the span from the first
// opening brace or bracket to the last matching closer, falling back to the
// last closer of either kind. The boolean reports whether such a span exists;
// it does not guarantee the span decodes.
func ExtractJSON(text string) (string, bool) {
	clean := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))

	start := strings.IndexAny(clean, "{[")
	if start == -1 {
		return clean, false
	}
	closer := byte('}')
	if clean[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(clean, closer)
	if end < start {
		end = max(strings.LastIndexByte(clean, '}'), strings.LastIndexByte(clean, ']'))
	}
	if end < start {
		return clean, false
	}
	return clean[start : end+1], true
}

// Decode extracts the JSON candidate from text and decodes it into a dynamic
// tree of map[string]any, []any and scalars.
func Decode(text string) (any, error) {
	candidate, ok := ExtractJSON(text)
	if !ok {
		return nil, ErrNoDocument
	}
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return v, nil
}
