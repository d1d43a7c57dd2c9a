// Package datapath implements dot-notation access to nested JSON-like values.
// It is shared by template binding resolution and connector field mapping.
package datapath

import (
	"strconv"
	"strings"
)

// Get resolves a dot-separated path against a nested structure of
// map[string]any and []any values. Sequence segments must be non-negative
// integer literals. Any miss (absent key, out-of-bounds index, wrong
// container kind) resolves to nil; Get never panics.
func Get(container any, path string) any {
	if path == "" {
		return nil
	}

	value := container
	for _, part := range strings.Split(path, ".") {
		switch current := value.(type) {
		case map[string]any:
			next, ok := current[part]
			if !ok {
				return nil
			}
			value = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(current) {
				return nil
			}
			value = current[idx]
		default:
			return nil
		}
	}
	return value
}

// Set assigns value at a dot-separated path, creating intermediate maps as
// needed. An existing non-map value along the way is replaced by a map so
// the descent can continue. The final segment overwrites unconditionally.
func Set(container map[string]any, path string, value any) {
	if path == "" {
		return
	}

	parts := strings.Split(path, ".")
	current := container
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
