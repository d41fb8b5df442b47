package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a model response holds no complete JSON object
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSONObject strips markdown fences and returns the first balanced
// {...} object of the response. Braces inside JSON strings are ignored.
func ExtractJSONObject(response string) (string, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
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
				return cleaned[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced braces", ErrNoJSON)
}

// DecodeJSONObject locates the JSON object in response and decodes it into v.
// There is a single parse attempt; malformed JSON is an error.
func DecodeJSONObject(response string, v any) (string, error) {
	obj, err := ExtractJSONObject(response)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return obj, fmt.Errorf("JSON parse error: %w", err)
	}
	return obj, nil
}
