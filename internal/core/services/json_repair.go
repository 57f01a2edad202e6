package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/logger"
)

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// RepairJSON makes one structural repair pass over model output. It strips
// Markdown code fences, normalises smart quotes, cuts the text to its
// outermost JSON object or array and drops trailing commas. It never adds
// or rewrites values.
func RepairJSON(s string) string {
	s = stripCodeFence(strings.TrimSpace(s))
	s = smartQuotes.Replace(s)
	s = outermostJSON(s)
	return dropTrailingCommas(s)
}

// decodeModelJSON decodes model output into v, retrying once after RepairJSON.
// It returns the error of the last attempt.
func decodeModelJSON(raw string, v any) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	repaired := RepairJSON(raw)
	if repaired == raw {
		return err
	}
	logger.Debug("repairing model output (%d -> %d bytes)", len(raw), len(repaired))
	return json.Unmarshal([]byte(repaired), v)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, which may carry a language tag.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func outermostJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// dropTrailingCommas removes commas that directly precede a closing bracket,
// leaving string contents untouched.
func dropTrailingCommas(s string) string {
	var b bytes.Buffer
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
