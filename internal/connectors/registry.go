package connectors

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingType is returned by Create when the configuration has no type
// tag. This is a configuration error and the only class of connector error
// that reaches callers directly.
var ErrMissingType = errors.New("data source config must include a 'type' field")

// UnknownTypeError is returned by Create for a type tag no constructor was
// registered for.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown connector type: %s", e.Type)
}

// Constructor builds a connector instance from a stored configuration.
type Constructor func(cfg Config) Connector

// Registry maps source-type tags to connector constructors. It is populated
// once during process initialization; after that it is read-only and safe
// for concurrent Create calls. Runtime re-registration is not supported.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register adds or overwrites the constructor for a type tag. Call during
// startup, before the registry is shared.
func (r *Registry) Register(tag string, ctor Constructor) {
	r.constructors[tag] = ctor
}

// Create instantiates the connector for the configuration's type tag.
func (r *Registry) Create(cfg Config) (Connector, error) {
	if cfg.Type == "" {
		return nil, ErrMissingType
	}
	ctor, ok := r.constructors[cfg.Type]
	if !ok {
		return nil, &UnknownTypeError{Type: cfg.Type}
	}
	return ctor(cfg), nil
}

// ListAvailable returns all registered type tags, sorted.
func (r *Registry) ListAvailable() []string {
	tags := make([]string, 0, len(r.constructors))
	for tag := range r.constructors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
