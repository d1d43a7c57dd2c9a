// Package manual implements the static data-source connector backed by a
// preconfigured sample payload. It performs no network operations.
package manual

import (
	"context"

	"github.com/mkorchagin/docforge/internal/connectors"
)

// SourceType is the registry tag for this connector.
const SourceType = "manual"

type Connector struct {
	cfg connectors.Config
}

// New builds a manual connector. The payload comes from the "sample_data"
// setting and may be a single record or a list of records.
func New(cfg connectors.Config) connectors.Connector {
	return &Connector{cfg: cfg}
}

func (c *Connector) Connect(_ context.Context) error    { return nil }
func (c *Connector) Disconnect(_ context.Context) error { return nil }

func (c *Connector) ValidateCredentials(_ context.Context) bool { return true }

// FetchData ignores the query and returns the configured sample payload
// after field mapping.
func (c *Connector) FetchData(_ context.Context, _ map[string]any) connectors.FetchResult {
	data, ok := c.cfg.Settings["sample_data"]
	if !ok || data == nil {
		data = map[string]any{}
	}
	data = connectors.ApplyFieldMappingsToData(data, c.cfg.FieldMappings)
	return connectors.Succeeded(SourceType, data)
}
