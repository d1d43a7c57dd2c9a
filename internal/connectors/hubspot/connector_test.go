package hubspot

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

func newTestConnector(t *testing.T, srv *httptest.Server, mappings []connectors.FieldMapping) *Connector {
	t.Helper()
	conn := New(connectors.Config{
		Type:          SourceType,
		Name:          "test crm",
		Settings:      map[string]any{"access_token": "pat-test-token"},
		FieldMappings: mappings,
	}).(*Connector)
	conn.baseURL = srv.URL
	return conn
}

func TestFetchData(t *testing.T) {
	t.Run("fetches a page of records", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
			assert.Equal(t, "Bearer pat-test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "25", r.URL.Query().Get("limit"))
			assert.Equal(t, "email,firstname", r.URL.Query().Get("properties"))
			json.NewEncoder(w).Encode(map[string]any{
				"results": []any{
					map[string]any{"id": "1", "properties": map[string]any{"email": "a@test"}},
					map[string]any{"id": "2", "properties": map[string]any{"email": "b@test"}},
				},
			})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		result := conn.FetchData(context.Background(), map[string]any{
			"objectType": "contacts",
			"properties": []any{"email", "firstname"},
			"limit":      25.0,
		})

		require.True(t, result.Success)
		records := result.Data.([]any)
		require.Len(t, records, 2)
		assert.Equal(t, "b@test", records[1].(map[string]any)["email"])
	})

	t.Run("fetches a single record by id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/crm/v3/objects/deals/42", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"id":         "42",
				"properties": map[string]any{"dealname": "Big Deal", "amount": "1200"},
			})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		result := conn.FetchData(context.Background(), map[string]any{
			"objectType": "deals",
			"recordId":   "42",
		})

		require.True(t, result.Success)
		record := result.Data.(map[string]any)
		assert.Equal(t, "Big Deal", record["dealname"])
	})

	t.Run("applies field mappings to each record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"results": []any{
					map[string]any{"id": "1", "properties": map[string]any{"firstname": "Jo"}},
				},
			})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, []connectors.FieldMapping{
			{SourceField: "firstname", TemplateField: "profile.name"},
		})
		result := conn.FetchData(context.Background(), map[string]any{})

		require.True(t, result.Success)
		records := result.Data.([]any)
		assert.Equal(t, "Jo",
			records[0].(map[string]any)["profile"].(map[string]any)["name"])
	})

	t.Run("unsupported object type is a contained failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be issued for an unsupported object type")
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		result := conn.FetchData(context.Background(), map[string]any{
			"objectType": "invoices",
		})

		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "unknown HubSpot object type: invoices")
	})

	t.Run("API errors are contained in the result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"expired token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		result := conn.FetchData(context.Background(), map[string]any{})

		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "HubSpot API error")
		assert.Contains(t, result.Errors[0], "401")
	})

	t.Run("defaults to contacts with limit 100", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		result := conn.FetchData(context.Background(), map[string]any{})
		require.True(t, result.Success)
		assert.Empty(t, result.Data)
	})
}

func TestValidateCredentials(t *testing.T) {
	t.Run("true when a one-contact list call succeeds", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		assert.True(t, conn.ValidateCredentials(context.Background()))
	})

	t.Run("false on auth failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		conn := newTestConnector(t, srv, nil)
		assert.False(t, conn.ValidateCredentials(context.Background()))
	})

	t.Run("false when unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		conn := newTestConnector(t, srv, nil)
		assert.False(t, conn.ValidateCredentials(context.Background()))
	})
}
