package oracle

import (
	"encoding/json"
	"errors"
)

// ErrNoJSONObject is returned when no balanced JSON object can be found in
// a model response.
var ErrNoJSONObject = errors.New("no JSON object in response")

// ExtractObject pulls the first balanced {...} span out of free-form model
// output and returns it as raw JSON. Models wrap their answers in code
// fences and surround them with prose despite instructions; scanning for a
// balanced object tolerates both.
//
// The scanner tracks string literals and escapes, so braces inside JSON
// strings do not unbalance the span. A span that balances but fails
// json.Valid is skipped and the scan continues from the next opening brace.
func ExtractObject(text string) (json.RawMessage, error) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}

		end, ok := scanObject(text, start)
		if !ok {
			// No balanced object starts anywhere at or after an
			// unterminated one.
			break
		}

		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return candidate, nil
		}
		start = end
	}
	return nil, ErrNoJSONObject
}

// scanObject returns the index of the brace closing the object that opens
// at start, or false when the object never closes.
func scanObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
