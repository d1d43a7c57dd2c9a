package connectors

// Query helpers tolerate the loosely-typed JSON maps connector queries
// arrive as. Absent or wrongly-typed keys fall back to defaults.

func QueryString(query map[string]any, key, fallback string) string {
	if v, ok := query[key].(string); ok {
		return v
	}
	return fallback
}

func QueryInt(query map[string]any, key string, fallback int) int {
	switch v := query[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func QueryStringSlice(query map[string]any, key string) []string {
	raw, ok := query[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func QueryMap(query map[string]any, key string) map[string]any {
	m, _ := query[key].(map[string]any)
	return m
}
