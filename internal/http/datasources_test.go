package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataSourcesCRUD(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("types lists registered connectors", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/datasources/types", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hubspot")
		assert.Contains(t, w.Body.String(), "manual")
		assert.Contains(t, w.Body.String(), "rest_api")
	})

	t.Run("create rejects unknown connector types", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/datasources", map[string]any{
			"name": "Bad",
			"type": "gopher",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("settings never appear in responses", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/datasources", map[string]any{
			"name":     "CRM",
			"type":     "manual",
			"settings": map[string]any{"sample_data": map[string]any{"secret": "classified"}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "classified")

		id := decodeBody(t, w)["id"].(string)
		w = doJSON(t, router, http.MethodGet, "/api/datasources/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "classified")
	})

	t.Run("fetch runs the connector", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/datasources", map[string]any{
			"name":     "Samples",
			"type":     "manual",
			"settings": map[string]any{"sample_data": map[string]any{"customer": "Ada"}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeBody(t, w)["id"].(string)

		w = doJSON(t, router, http.MethodPost, "/api/datasources/"+id+"/fetch", map[string]any{})
		require.Equal(t, http.StatusOK, w.Code)

		response := decodeBody(t, w)
		assert.Equal(t, true, response["success"])
		assert.Equal(t, "manual", response["sourceType"])
	})

	t.Run("test validates manual sources", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/datasources", map[string]any{
			"name": "Samples",
			"type": "manual",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeBody(t, w)["id"].(string)

		w = doJSON(t, router, http.MethodPost, "/api/datasources/"+id+"/test", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["valid"])
	})

	t.Run("update and delete round-trip", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/datasources", map[string]any{
			"name": "Old Name",
			"type": "manual",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeBody(t, w)["id"].(string)

		w = doJSON(t, router, http.MethodPut, "/api/datasources/"+id, map[string]any{
			"name": "New Name",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "New Name", decodeBody(t, w)["name"])

		w = doJSON(t, router, http.MethodDelete, "/api/datasources/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/datasources/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
