// Package builtin wires every built-in connector variant into a registry.
// Registration happens here, explicitly at startup, rather than through
// import side effects.
package builtin

import (
	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/connectors/hubspot"
	"github.com/mkorchagin/docforge/internal/connectors/manual"
	"github.com/mkorchagin/docforge/internal/connectors/restapi"
)

// NewDefaultRegistry returns a registry with all built-in connector types
// registered. The result is read-only from the caller's perspective.
func NewDefaultRegistry() *connectors.Registry {
	registry := connectors.NewRegistry()
	registry.Register(hubspot.SourceType, hubspot.New)
	registry.Register(restapi.SourceType, restapi.New)
	registry.Register(manual.SourceType, manual.New)
	return registry
}
