package connectors

import "github.com/mkorchagin/docforge/internal/datapath"

// ApplyFieldMappings builds a normalized record from a raw one. With no
// mappings the raw record is returned as-is. Otherwise each mapping reads
// sourceField from the raw record and writes it at templateField in a fresh
// record; unmapped fields are dropped.
func ApplyFieldMappings(record map[string]any, mappings []FieldMapping) map[string]any {
	if len(mappings) == 0 {
		return record
	}

	mapped := make(map[string]any)
	for _, mapping := range mappings {
		if mapping.SourceField == "" || mapping.TemplateField == "" {
			continue
		}
		value := datapath.Get(record, mapping.SourceField)
		datapath.Set(mapped, mapping.TemplateField, value)
	}
	return mapped
}

// ApplyFieldMappingsToData applies mappings to fetched data of either shape:
// a single record or an ordered list of records. List order and length are
// preserved; non-record list items pass through unchanged.
func ApplyFieldMappingsToData(data any, mappings []FieldMapping) any {
	if len(mappings) == 0 {
		return data
	}

	switch v := data.(type) {
	case map[string]any:
		return ApplyFieldMappings(v, mappings)
	case []any:
		mapped := make([]any, len(v))
		for i, item := range v {
			if record, ok := item.(map[string]any); ok {
				mapped[i] = ApplyFieldMappings(record, mappings)
			} else {
				mapped[i] = item
			}
		}
		return mapped
	default:
		return data
	}
}
