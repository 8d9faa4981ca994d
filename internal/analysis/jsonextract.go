package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// errNoJSONObject indicates no well-formed JSON object was found in the
// provider's response text. Callers treat it like any provider failure
// and take the phase's heuristic fallback.
var errNoJSONObject = errors.New("no JSON object found in response")

// extractJSONObject finds the first balanced JSON object embedded in
// free-form text and unmarshals it into out. Providers are asked for
// bare JSON but routinely wrap it in prose or markdown fences, so the
// scanner tolerates anything around the object.
func extractJSONObject(text string, out any) error {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := balancedObjectEnd(text, start); end > start {
			candidate := text[start : end+1]
			if err := json.Unmarshal([]byte(candidate), out); err == nil {
				return nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return errNoJSONObject
}

// balancedObjectEnd returns the index of the brace closing the object
// opened at start, or -1. String literals and escapes are respected.
func balancedObjectEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
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
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
