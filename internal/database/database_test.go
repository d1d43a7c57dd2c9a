package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/entities"
)

// setupTestDB creates a fresh test database with a throwaway encryption key
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	key, err := crypto.GenerateKeyBytes()
	require.NoError(t, err)
	encryptor, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), encryptor)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestTemplates(t *testing.T) {
	db := setupTestDB(t)

	t.Run("CreateTemplate assigns an id", func(t *testing.T) {
		template := &entities.Template{
			UserID:       "user-1",
			Name:         "Invoice",
			TemplateJSON: `{"content":"Hello"}`,
		}
		require.NoError(t, db.CreateTemplate(template))
		assert.NotEmpty(t, template.ID)
	})

	t.Run("GetTemplate is scoped to the owner", func(t *testing.T) {
		template := &entities.Template{UserID: "user-1", Name: "Report"}
		require.NoError(t, db.CreateTemplate(template))

		found, err := db.GetTemplate(template.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Report", found.Name)

		_, err = db.GetTemplate(template.ID, "someone-else")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Document deserializes the stored JSON", func(t *testing.T) {
		template := &entities.Template{
			UserID:       "user-1",
			Name:         "Letter",
			TemplateJSON: `{"content":"Hi {{name}}"}`,
		}
		require.NoError(t, db.CreateTemplate(template))

		found, err := db.GetTemplate(template.ID, "user-1")
		require.NoError(t, err)
		doc, err := found.Document()
		require.NoError(t, err)
		assert.Contains(t, doc, "content")
	})

	t.Run("DeleteTemplate removes the row", func(t *testing.T) {
		template := &entities.Template{UserID: "user-1", Name: "Gone"}
		require.NoError(t, db.CreateTemplate(template))
		require.NoError(t, db.DeleteTemplate(template.ID, "user-1"))

		_, err := db.GetTemplate(template.ID, "user-1")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestDataSources(t *testing.T) {
	db := setupTestDB(t)

	settings := map[string]any{"access_token": "secret-token"}
	mappings := []connectors.FieldMapping{
		{SourceField: "email", TemplateField: "customer.email"},
	}

	t.Run("settings are encrypted at rest", func(t *testing.T) {
		ds := &entities.DataSource{UserID: "user-1", Name: "CRM", Type: "hubspot"}
		require.NoError(t, db.CreateDataSource(ds, settings, mappings))

		var raw entities.DataSource
		require.NoError(t, db.DB.First(&raw, "id = ?", ds.ID).Error)
		assert.NotContains(t, raw.Settings, "secret-token")
	})

	t.Run("ConnectorConfig round-trips settings and mappings", func(t *testing.T) {
		ds := &entities.DataSource{UserID: "user-1", Name: "CRM", Type: "hubspot"}
		require.NoError(t, db.CreateDataSource(ds, settings, mappings))

		config, err := db.ConnectorConfig(ds)
		require.NoError(t, err)
		assert.Equal(t, "hubspot", config.Type)
		assert.Equal(t, "secret-token", config.Settings["access_token"])
		require.Len(t, config.FieldMappings, 1)
		assert.Equal(t, "customer.email", config.FieldMappings[0].TemplateField)
	})

	t.Run("UpdateDataSource keeps stored settings when nil", func(t *testing.T) {
		ds := &entities.DataSource{UserID: "user-1", Name: "CRM", Type: "hubspot"}
		require.NoError(t, db.CreateDataSource(ds, settings, mappings))

		ds.Name = "Renamed"
		require.NoError(t, db.UpdateDataSource(ds, nil, nil))

		found, err := db.GetDataSource(ds.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)

		config, err := db.ConnectorConfig(found)
		require.NoError(t, err)
		assert.Equal(t, "secret-token", config.Settings["access_token"])
	})

	t.Run("TouchDataSourceSync records the sync time", func(t *testing.T) {
		ds := &entities.DataSource{UserID: "user-1", Name: "CRM", Type: "manual"}
		require.NoError(t, db.CreateDataSource(ds, nil, nil))
		require.NoError(t, db.TouchDataSourceSync(ds))

		found, err := db.GetDataSource(ds.ID, "user-1")
		require.NoError(t, err)
		require.NotNil(t, found.LastSyncedAt)
	})
}

func TestGeneratedDocuments(t *testing.T) {
	db := setupTestDB(t)

	t.Run("lifecycle pending to completed", func(t *testing.T) {
		doc := &entities.GeneratedDocument{UserID: "user-1", TemplateID: "tpl-1"}
		require.NoError(t, db.CreateGeneratedDocument(doc))
		assert.Equal(t, entities.DocumentStatusPending, doc.Status)

		require.NoError(t, db.MarkDocumentRunning(doc))
		require.NoError(t, db.MarkDocumentCompleted(doc, "documents/out.pdf"))

		found, err := db.GetGeneratedDocument(doc.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, entities.DocumentStatusCompleted, found.Status)
		assert.Equal(t, "documents/out.pdf", found.StoragePath)
	})

	t.Run("failure records the reason", func(t *testing.T) {
		doc := &entities.GeneratedDocument{UserID: "user-1", TemplateID: "tpl-1"}
		require.NoError(t, db.CreateGeneratedDocument(doc))
		require.NoError(t, db.MarkDocumentFailed(doc, "renderer unavailable"))

		found, err := db.GetGeneratedDocument(doc.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, entities.DocumentStatusFailed, found.Status)
		assert.Equal(t, "renderer unavailable", found.Error)
	})

	t.Run("GetDocumentsOlderThan skips pending jobs", func(t *testing.T) {
		old := &entities.GeneratedDocument{UserID: "user-1", TemplateID: "tpl-1"}
		require.NoError(t, db.CreateGeneratedDocument(old))
		require.NoError(t, db.MarkDocumentCompleted(old, "documents/old.pdf"))

		pending := &entities.GeneratedDocument{UserID: "user-1", TemplateID: "tpl-1"}
		require.NoError(t, db.CreateGeneratedDocument(pending))

		docs, err := db.GetDocumentsOlderThan(time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, old.ID, docs[0].ID)
	})
}
