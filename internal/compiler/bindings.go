package compiler

import (
	"strings"

	"github.com/mkorchagin/docforge/internal/datapath"
)

// ResolveBindings replaces every non-greedy {{ path | filter | ... }}
// occurrence in text with the resolved, filtered value from data. Unresolved
// paths render as the empty string. Text outside bindings passes through
// untouched; no escaping is added.
func ResolveBindings(text string, data map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var out strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			out.WriteString(rest)
			break
		}

		expr := rest[start+2 : start+2+end]
		if strings.TrimSpace(expr) == "" {
			// Empty braces are not a binding.
			out.WriteString(rest[:start+2+end+2])
		} else {
			out.WriteString(rest[:start])
			path, filterNames := parseExpression(expr)
			value := applyFilters(datapath.Get(data, path), filterNames)
			if value != nil {
				out.WriteString(stringify(value))
			}
		}
		rest = rest[start+2+end+2:]
	}
	return out.String()
}

// parseExpression splits "path | filter1 | filter2" into the field path and
// the ordered filter names, trimming whitespace around each segment.
func parseExpression(expr string) (string, []string) {
	segments := strings.Split(expr, "|")
	path := strings.TrimSpace(segments[0])
	if len(segments) == 1 {
		return path, nil
	}
	filters := make([]string, 0, len(segments)-1)
	for _, segment := range segments[1:] {
		filters = append(filters, strings.TrimSpace(segment))
	}
	return path, filters
}
