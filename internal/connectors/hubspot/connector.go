// Package hubspot implements the CRM data-source connector against the
// HubSpot CRM v3 objects API.
package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkorchagin/docforge/internal/connectors"
)

// SourceType is the registry tag for this connector.
const SourceType = "hubspot"

const (
	defaultBaseURL = "https://api.hubapi.com"
	defaultLimit   = 100
	requestTimeout = 30 * time.Second
)

// HubSpot allows roughly 100 requests per 10 seconds per token.
const requestsPerSecond = 10

var supportedObjectTypes = map[string]bool{
	"contacts":  true,
	"companies": true,
	"deals":     true,
	"tickets":   true,
}

type Connector struct {
	cfg         connectors.Config
	accessToken string
	baseURL     string
	limiter     *rate.Limiter
	client      *http.Client
}

// New builds a HubSpot connector from a stored data-source configuration.
// The bearer access token comes from the "access_token" setting.
func New(cfg connectors.Config) connectors.Connector {
	return &Connector{
		cfg:         cfg,
		accessToken: cfg.SettingString("access_token", ""),
		baseURL:     defaultBaseURL,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

func (c *Connector) Connect(_ context.Context) error {
	if c.client == nil {
		c.client = &http.Client{Timeout: requestTimeout}
	}
	return nil
}

func (c *Connector) Disconnect(_ context.Context) error {
	if c.client != nil {
		c.client.CloseIdleConnections()
		c.client = nil
	}
	return nil
}

// ValidateCredentials performs a minimal one-contact list call. Any failure
// (auth, network, unexpected status) yields false.
func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	if err := c.Connect(ctx); err != nil {
		return false
	}
	_, err := c.fetchPage(ctx, "contacts", nil, 1)
	return err == nil
}

// FetchData reads records from HubSpot.
//
// Query shape:
//
//	{
//	  "objectType": "contacts" | "companies" | "deals" | "tickets",
//	  "properties": ["email", "firstname"],
//	  "recordId":   "optional-specific-id",
//	  "limit":      100
//	}
func (c *Connector) FetchData(ctx context.Context, query map[string]any) connectors.FetchResult {
	if err := c.Connect(ctx); err != nil {
		return connectors.Failure(SourceType, "failed to initialize HubSpot client")
	}

	objectType := connectors.QueryString(query, "objectType", "contacts")
	if !supportedObjectTypes[objectType] {
		return connectors.Failure(SourceType,
			fmt.Sprintf("unknown HubSpot object type: %s", objectType))
	}

	properties := connectors.QueryStringSlice(query, "properties")
	recordID := connectors.QueryString(query, "recordId", "")
	limit := connectors.QueryInt(query, "limit", defaultLimit)

	var data any
	var err error
	if recordID != "" {
		data, err = c.fetchSingle(ctx, objectType, recordID, properties)
	} else {
		data, err = c.fetchPage(ctx, objectType, properties, limit)
	}
	if err != nil {
		return connectors.Failure(SourceType, err.Error())
	}

	data = connectors.ApplyFieldMappingsToData(data, c.cfg.FieldMappings)
	return connectors.Succeeded(SourceType, data)
}

type objectRecord struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

type objectPage struct {
	Results []objectRecord `json:"results"`
}

// fetchSingle reads one record by id and returns its properties.
func (c *Connector) fetchSingle(ctx context.Context, objectType, recordID string, properties []string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/%s/%s", c.baseURL, objectType, url.PathEscape(recordID))
	body, err := c.get(ctx, endpoint, properties, 0)
	if err != nil {
		return nil, err
	}

	var record objectRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to decode HubSpot response: %w", err)
	}
	if record.Properties == nil {
		record.Properties = map[string]any{}
	}
	return record.Properties, nil
}

// fetchPage reads up to limit records and returns their properties in order.
func (c *Connector) fetchPage(ctx context.Context, objectType string, properties []string, limit int) ([]any, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/%s", c.baseURL, objectType)
	body, err := c.get(ctx, endpoint, properties, limit)
	if err != nil {
		return nil, err
	}

	var page objectPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode HubSpot response: %w", err)
	}

	records := make([]any, 0, len(page.Results))
	for _, result := range page.Results {
		if result.Properties == nil {
			result.Properties = map[string]any{}
		}
		records = append(records, result.Properties)
	}
	return records, nil
}

func (c *Connector) get(ctx context.Context, endpoint string, properties []string, limit int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	q := u.Query()
	if len(properties) > 0 {
		q.Set("properties", strings.Join(properties, ","))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HubSpot API error: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
