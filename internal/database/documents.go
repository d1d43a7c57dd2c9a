package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkorchagin/docforge/internal/entities"
)

func (d *Database) CreateGeneratedDocument(doc *entities.GeneratedDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = entities.DocumentStatusPending
	}
	return d.DB.Create(doc).Error
}

func (d *Database) GetGeneratedDocument(id, userID string) (*entities.GeneratedDocument, error) {
	var doc entities.GeneratedDocument
	err := d.DB.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetGeneratedDocumentByID looks a document up without a user scope. Task
// workers use it; request handlers go through GetGeneratedDocument.
func (d *Database) GetGeneratedDocumentByID(id string) (*entities.GeneratedDocument, error) {
	var doc entities.GeneratedDocument
	err := d.DB.First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Database) GetGeneratedDocumentsForUser(userID string) ([]entities.GeneratedDocument, error) {
	var docs []entities.GeneratedDocument
	err := d.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (d *Database) MarkDocumentRunning(doc *entities.GeneratedDocument) error {
	doc.Status = entities.DocumentStatusRunning
	return d.DB.Model(doc).Update("status", entities.DocumentStatusRunning).Error
}

func (d *Database) MarkDocumentCompleted(doc *entities.GeneratedDocument, storagePath string) error {
	doc.Status = entities.DocumentStatusCompleted
	doc.StoragePath = storagePath
	doc.Error = ""
	return d.DB.Model(doc).Updates(map[string]any{
		"status":       entities.DocumentStatusCompleted,
		"storage_path": storagePath,
		"error":        "",
	}).Error
}

func (d *Database) MarkDocumentFailed(doc *entities.GeneratedDocument, reason string) error {
	doc.Status = entities.DocumentStatusFailed
	doc.Error = reason
	return d.DB.Model(doc).Updates(map[string]any{
		"status": entities.DocumentStatusFailed,
		"error":  reason,
	}).Error
}

// GetDocumentsOlderThan lists completed or failed documents created before
// the cutoff. The cleanup task uses it to expire stored artifacts.
func (d *Database) GetDocumentsOlderThan(cutoff time.Time) ([]entities.GeneratedDocument, error) {
	var docs []entities.GeneratedDocument
	err := d.DB.
		Where("created_at < ?", cutoff).
		Where("status IN ?", []entities.DocumentStatus{entities.DocumentStatusCompleted, entities.DocumentStatusFailed}).
		Find(&docs).Error
	return docs, err
}

func (d *Database) DeleteGeneratedDocument(id string) error {
	return d.DB.Delete(&entities.GeneratedDocument{}, "id = ?", id).Error
}
