package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mkorchagin/docforge/internal/connectors/builtin"
	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/renderer"
	"github.com/mkorchagin/docforge/internal/services"
	"github.com/mkorchagin/docforge/internal/storage/providers/local"
)

// stubEngine avoids driving a real browser in handler tests
type stubEngine struct {
	pdf []byte
	err error
}

func (e *stubEngine) RenderPDF(ctx context.Context, html string, opts renderer.Options) ([]byte, error) {
	return e.pdf, e.err
}

func (e *stubEngine) RenderThumbnail(ctx context.Context, html string) ([]byte, error) {
	return e.pdf, e.err
}

func (e *stubEngine) Close() error { return nil }

func setupTestRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := crypto.GenerateKeyBytes()
	require.NoError(t, err)
	encryptor, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"), encryptor)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := local.NewClient(t.TempDir(), "/downloads")
	require.NoError(t, err)

	registry := builtin.NewDefaultRegistry()
	generator := services.NewGenerationService(db, registry, &stubEngine{pdf: []byte("%PDF-1.7")}, store, 10*time.Second)

	router := NewRouter(RouterConfig{
		Database:           db,
		Generator:          generator,
		Registry:           registry,
		ArtifactsDir:       store.Root(),
		ArtifactsURLPrefix: "/downloads",
		Version:            "test",
	})
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
