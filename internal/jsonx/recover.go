package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Recovery failure modes. Callers treat any of them as "zero items", but each
// one is distinguishable for logging and tests.
var (
	ErrNoPayload  = errors.New("no JSON payload found")
	ErrUnparsable = errors.New("payload unparsable after recovery")
)

// DecodeArray extracts a JSON array from noisy model output and unmarshals it
// into v. The input may be wrapped in code fences, prefixed or suffixed with
// prose, and may contain raw control characters inside string literals. A
// single top-level object is accepted and treated as a one-element array.
func DecodeArray(raw string, v any) error {
	payload, err := ExtractPayload(raw)
	if err != nil {
		return err
	}

	payload = EscapeControls(payload)

	if strings.HasPrefix(payload, "{") {
		payload = "[" + payload + "]"
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return nil
}

// ExtractPayload strips code-fence markers and returns the slice between the
// first '[' and last ']'. When no array brackets exist it falls back to the
// first '{' and last '}'. Text outside the brackets is discarded.
func ExtractPayload(raw string) (string, error) {
	s := stripFences(raw)

	if payload, ok := between(s, '[', ']'); ok {
		return payload, nil
	}
	if payload, ok := between(s, '{', '}'); ok {
		return payload, nil
	}
	return "", ErrNoPayload
}

func stripFences(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func between(s string, opener, closer byte) (string, bool) {
	start := strings.IndexByte(s, opener)
	end := strings.LastIndexByte(s, closer)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// EscapeControls rewrites raw control characters appearing inside string
// literals (models frequently emit literal newlines in body text) into their
// JSON escape sequences. Characters outside string literals pass through.
func EscapeControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}

		if escaped {
			escaped = false
			b.WriteRune(r)
			continue
		}

		switch {
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = false
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
