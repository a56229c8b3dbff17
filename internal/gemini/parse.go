package gemini

import (
	"regexp"
	"strings"
)

// leadingMarker matches list numbering ("1.", "2)") and any run of
// non-letter, non-digit characters (bullets, dashes, quotes) at the start
// of a line.
var leadingMarker = regexp.MustCompile(`^(?:\d+[.)]\s*|[^\p{L}\p{N}_]+)+`)

// NormalizeLine strips list markers and surrounding whitespace from a single
// line of model output.
func NormalizeLine(line string) string {
	return strings.TrimSpace(leadingMarker.ReplaceAllString(line, ""))
}

// ParseLines splits raw model output into normalized, non-empty lines,
// keeping the first occurrence of each exact string and stopping once
// limit unique lines are collected. A limit <= 0 means no limit.
func ParseLines(text string, limit int) []string {
	unique := make([]string, 0, max(limit, 0))
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(text, "\n") {
		line := NormalizeLine(raw)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		unique = append(unique, line)
		if limit > 0 && len(unique) >= limit {
			break
		}
	}
	return unique
}
