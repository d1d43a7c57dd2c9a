// Package connectors defines the data-source capability set, the field
// mapping applied to fetched records, and the registry that instantiates the
// right connector from a stored data-source configuration.
package connectors

import "context"

// FieldMapping declares how one field of a raw fetched record becomes one
// field of the normalized record. Both sides are dot-notation paths.
type FieldMapping struct {
	SourceField   string `json:"sourceField"`
	TemplateField string `json:"templateField"`
}

// Config is a stored data-source configuration.
type Config struct {
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Settings      map[string]any `json:"settings"`
	FieldMappings []FieldMapping `json:"fieldMappings"`
}

// SettingString reads a string-valued connector setting.
func (c Config) SettingString(key, fallback string) string {
	if v, ok := c.Settings[key].(string); ok {
		return v
	}
	return fallback
}

// FetchResult is the uniform envelope every connector fetch returns. Errors
// is non-empty only when Success is false.
type FetchResult struct {
	Success    bool     `json:"success"`
	Data       any      `json:"data"`
	SourceType string   `json:"sourceType"`
	Errors     []string `json:"errors"`
}

// Failure builds a failed FetchResult for the given source type.
func Failure(sourceType string, messages ...string) FetchResult {
	return FetchResult{
		Success:    false,
		Data:       map[string]any{},
		SourceType: sourceType,
		Errors:     messages,
	}
}

// Success builds a successful FetchResult for the given source type.
func Succeeded(sourceType string, data any) FetchResult {
	return FetchResult{
		Success:    true,
		Data:       data,
		SourceType: sourceType,
		Errors:     []string{},
	}
}

// Connector is the capability set every data-source implementation
// satisfies. Connect and Disconnect are idempotent. ValidateCredentials and
// FetchData never propagate failures: credential problems yield false, fetch
// problems yield a FetchResult with Success=false and human-readable Errors.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	ValidateCredentials(ctx context.Context) bool
	FetchData(ctx context.Context, query map[string]any) FetchResult
}
