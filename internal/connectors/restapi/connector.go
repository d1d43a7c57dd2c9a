// Package restapi implements the generic REST data-source connector for
// custom HTTP APIs.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/datapath"
)

// SourceType is the registry tag for this connector.
const SourceType = "rest_api"

const (
	defaultTimeout      = 30 * time.Second
	defaultAPIKeyHeader = "X-API-Key"
)

type Connector struct {
	cfg          connectors.Config
	baseURL      string
	authType     string // none, bearer, api_key
	authValue    string
	apiKeyHeader string
	headers      map[string]any
	timeout      time.Duration
	client       *http.Client
}

// New builds a REST connector from a stored data-source configuration.
// Settings: base_url, auth_type (none/bearer/api_key), auth_value,
// api_key_header, headers, timeout (seconds).
func New(cfg connectors.Config) connectors.Connector {
	timeout := defaultTimeout
	switch v := cfg.Settings["timeout"].(type) {
	case float64:
		timeout = time.Duration(v * float64(time.Second))
	case int:
		timeout = time.Duration(v) * time.Second
	}
	headers, _ := cfg.Settings["headers"].(map[string]any)

	return &Connector{
		cfg:          cfg,
		baseURL:      cfg.SettingString("base_url", ""),
		authType:     cfg.SettingString("auth_type", "none"),
		authValue:    cfg.SettingString("auth_value", ""),
		apiKeyHeader: cfg.SettingString("api_key_header", defaultAPIKeyHeader),
		headers:      headers,
		timeout:      timeout,
	}
}

func (c *Connector) Connect(_ context.Context) error {
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
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

// ValidateCredentials issues a GET against the base URL and treats anything
// below 500 as a working endpoint. The client is released on every path.
func (c *Connector) ValidateCredentials(ctx context.Context) bool {
	if err := c.Connect(ctx); err != nil {
		return false
	}
	defer c.Disconnect(ctx)

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < http.StatusInternalServerError
}

// FetchData issues one request described by the query.
//
// Query shape:
//
//	{
//	  "endpoint":     "/api/v1/customers",
//	  "method":       "GET",
//	  "params":       {"status": "active"},
//	  "body":         null,
//	  "responsePath": "data.items"
//	}
func (c *Connector) FetchData(ctx context.Context, query map[string]any) connectors.FetchResult {
	if err := c.Connect(ctx); err != nil {
		return connectors.Failure(SourceType, "failed to initialize HTTP client")
	}
	defer c.Disconnect(ctx)

	endpoint := connectors.QueryString(query, "endpoint", "/")
	method := strings.ToUpper(connectors.QueryString(query, "method", http.MethodGet))
	params := connectors.QueryMap(query, "params")
	responsePath := connectors.QueryString(query, "responsePath", "")

	req, err := c.newRequest(ctx, method, endpoint, params, query["body"])
	if err != nil {
		return connectors.Failure(SourceType, fmt.Sprintf("request error: %v", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return connectors.Failure(SourceType, fmt.Sprintf("request error: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return connectors.Failure(SourceType, fmt.Sprintf("request error: %v", err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return connectors.Failure(SourceType,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return connectors.Failure(SourceType, fmt.Sprintf("failed to decode response: %v", err))
	}

	if responsePath != "" {
		data = datapath.Get(data, responsePath)
	}
	data = connectors.ApplyFieldMappingsToData(data, c.cfg.FieldMappings)
	return connectors.Succeeded(SourceType, data)
}

func (c *Connector) newRequest(ctx context.Context, method, endpoint string, params map[string]any, body any) (*http.Request, error) {
	u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + endpoint)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := u.Query()
		for key, value := range params {
			q.Set(key, fmt.Sprintf("%v", value))
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		req.Header.Set(key, fmt.Sprintf("%v", value))
	}
	switch c.authType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.authValue)
	case "api_key":
		req.Header.Set(c.apiKeyHeader, c.authValue)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
