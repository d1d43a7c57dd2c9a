package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mkorchagin/docforge/internal/entities"
	"github.com/mkorchagin/docforge/internal/storage"
)

// DocumentExpirer lists and removes finished documents past their retention.
type DocumentExpirer interface {
	GetDocumentsOlderThan(cutoff time.Time) ([]entities.GeneratedDocument, error)
	DeleteGeneratedDocument(id string) error
}

// CleanupArtifactsTask removes generated documents older than the retention
// period together with their stored artifacts.
type CleanupArtifactsTask struct {
	RetentionHours int `json:"retention_hours"`
}

// Config returns the queue configuration for artifact cleanup tasks.
func (t CleanupArtifactsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_artifacts",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupArtifactsProcessor creates a processor function for CleanupArtifactsTask.
func CleanupArtifactsProcessor(expirer DocumentExpirer, store storage.Client) backlite.QueueProcessor[CleanupArtifactsTask] {
	return func(ctx context.Context, task CleanupArtifactsTask) error {
		if expirer == nil {
			return fmt.Errorf("document expirer not configured")
		}

		retentionHours := task.RetentionHours
		if retentionHours <= 0 {
			retentionHours = 168
		}
		cutoff := time.Now().Add(-time.Duration(retentionHours) * time.Hour)

		docs, err := expirer.GetDocumentsOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("list expired documents: %w", err)
		}

		deleted := 0
		for _, doc := range docs {
			if doc.StoragePath != "" && store != nil {
				if err := store.Delete(ctx, doc.StoragePath); err != nil {
					log.Printf("[TASK ERROR] Failed to delete artifact %s: %v", doc.StoragePath, err)
					continue
				}
			}
			if err := expirer.DeleteGeneratedDocument(doc.ID); err != nil {
				log.Printf("[TASK ERROR] Failed to delete document %s: %v", doc.ID, err)
				continue
			}
			deleted++
		}

		log.Printf("[TASK] Cleaned up %d documents older than %d hours", deleted, retentionHours)
		return nil
	}
}

// NewCleanupArtifactsQueue creates a backlite queue for artifact cleanup tasks.
func NewCleanupArtifactsQueue(expirer DocumentExpirer, store storage.Client) backlite.Queue {
	return backlite.NewQueue(CleanupArtifactsProcessor(expirer, store))
}
