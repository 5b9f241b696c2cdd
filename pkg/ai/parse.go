package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject pulls the first balanced {...} object out of a raw model
// response and decodes it into an untyped map. Models occasionally wrap their
// payload in markdown fences or surrounding commentary despite instructions.
func extractJSONObject(content string) (map[string]interface{}, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	end := balancedObjectEnd(content, start)
	if end == -1 {
		return nil, fmt.Errorf("unterminated JSON object in response")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse review json: %w", err)
	}

	return payload, nil
}

// balancedObjectEnd returns the index of the brace closing the object opened
// at start, skipping braces inside string literals, or -1 if unbalanced.
func balancedObjectEnd(content string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		ch := content[i]
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
