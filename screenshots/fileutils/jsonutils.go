package fileutils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeModelJSON unmarshals JSON from a model response, with a small amount of robustness
// for cases where the model wraps the JSON in a markdown fence or in extra prose.
// Both top-level objects and arrays are accepted; the outermost delimiters matching v's
// shape are extracted when the fast path fails.
func DecodeModelJSON(outputText string, v any) error {
	s := stripCodeFence(strings.TrimSpace(outputText))
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	// Fast path: valid JSON as-is.
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	open, close := byte('{'), byte('}')
	if first := strings.IndexAny(s, "[{"); first >= 0 && s[first] == '[' {
		open, close = '[', ']'
	}
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON value found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
