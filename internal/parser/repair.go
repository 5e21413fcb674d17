package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseJSON recovers a JSON value from a possibly malformed model response:
// strict parse first, then the contents of a fenced code block, then the
// substring between the first '{' and the last '}'. All three failing yields a
// ResponseParseError retaining the original text.
func ParseJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &v); err == nil {
			return v, nil
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		if err := json.Unmarshal([]byte(text[first:last+1]), &v); err == nil {
			return v, nil
		}
	}

	return nil, &ResponseParseError{Raw: text}
}

// ParseJSONObject is ParseJSON restricted to object results, the shape every
// extraction record takes.
func ParseJSONObject(text string) (map[string]any, error) {
	v, err := ParseJSON(text)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ResponseParseError{Raw: text}
	}
	return m, nil
}
