package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorchagin/docforge/internal/connectors"
)

func newTestConnector(t *testing.T, srv *httptest.Server, settings map[string]any, mappings []connectors.FieldMapping) *Connector {
	t.Helper()
	if settings == nil {
		settings = map[string]any{}
	}
	settings["base_url"] = srv.URL
	conn := New(connectors.Config{
		Type:          SourceType,
		Name:          "test api",
		Settings:      settings,
		FieldMappings: mappings,
	})
	return conn.(*Connector)
}

func TestFetchData(t *testing.T) {
	t.Run("fetches and narrows via responsePath", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/customers", r.URL.Path)
			assert.Equal(t, "active", r.URL.Query().Get("status"))
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"items": []any{
						map[string]any{"email": "jo@acme.test"},
					},
				},
			})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, []connectors.FieldMapping{
			{SourceField: "email", TemplateField: "contact.email"},
		})

		result := conn.FetchData(context.Background(), map[string]any{
			"endpoint":     "/api/customers",
			"params":       map[string]any{"status": "active"},
			"responsePath": "data.items",
		})

		require.True(t, result.Success)
		items, ok := result.Data.([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, "jo@acme.test",
			items[0].(map[string]any)["contact"].(map[string]any)["email"])
		assert.Empty(t, result.Errors)
	})

	t.Run("non-success status becomes a failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such resource", http.StatusNotFound)
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/missing"})

		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "404")
		assert.Nil(t, conn.client, "client must be released after the call")
	})

	t.Run("transport failure becomes a failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		conn := newTestConnector(t, srv, nil, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/"})

		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "request error")
		assert.Nil(t, conn.client)
	})

	t.Run("sends POST body as JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "draft", payload["state"])
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		result := conn.FetchData(context.Background(), map[string]any{
			"endpoint": "/api/orders",
			"method":   "post",
			"body":     map[string]any{"state": "draft"},
		})
		assert.True(t, result.Success)
	})

	t.Run("invalid JSON response becomes a failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Errors[0], "decode")
	})
}

func TestAuthModes(t *testing.T) {
	t.Run("bearer auth sets Authorization header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, map[string]any{
			"auth_type":  "bearer",
			"auth_value": "secret-token",
		}, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/"})
		assert.True(t, result.Success)
	})

	t.Run("api_key auth uses the configured header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "k-123", r.Header.Get("X-Custom-Key"))
			json.NewEncoder(w).Encode(map[string]any{})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, map[string]any{
			"auth_type":      "api_key",
			"auth_value":     "k-123",
			"api_key_header": "X-Custom-Key",
		}, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/"})
		assert.True(t, result.Success)
	})

	t.Run("static headers are forwarded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "v2", r.Header.Get("X-API-Version"))
			json.NewEncoder(w).Encode(map[string]any{})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, map[string]any{
			"headers": map[string]any{"X-API-Version": "v2"},
		}, nil)
		result := conn.FetchData(context.Background(), map[string]any{"endpoint": "/"})
		assert.True(t, result.Success)
	})
}

func TestValidateCredentials(t *testing.T) {
	t.Run("true for responses below 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		assert.True(t, conn.ValidateCredentials(context.Background()))
		assert.Nil(t, conn.client)
	})

	t.Run("false for server errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		assert.False(t, conn.ValidateCredentials(context.Background()))
	})

	t.Run("false when the endpoint is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		conn := newTestConnector(t, srv, nil, nil)
		assert.False(t, conn.ValidateCredentials(context.Background()))
		assert.Nil(t, conn.client)
	})
}
