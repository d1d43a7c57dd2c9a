package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mkorchagin/docforge/internal/services"
)

// RenderDocumentTask generates one document through the full pipeline.
type RenderDocumentTask struct {
	DocumentID string `json:"document_id"`
}

// Config returns the queue configuration for document rendering tasks.
func (t RenderDocumentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "render_document",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RenderDocumentProcessor creates a processor function for RenderDocumentTask.
func RenderDocumentProcessor(generator *services.GenerationService) backlite.QueueProcessor[RenderDocumentTask] {
	return func(ctx context.Context, task RenderDocumentTask) error {
		if generator == nil {
			return fmt.Errorf("generation service not configured")
		}

		if err := generator.ProcessDocument(ctx, task.DocumentID); err != nil {
			return fmt.Errorf("render document %s: %w", task.DocumentID, err)
		}

		log.Printf("[TASK] Rendered document %s", task.DocumentID)
		return nil
	}
}

// NewRenderDocumentQueue creates a backlite queue for document rendering tasks.
func NewRenderDocumentQueue(generator *services.GenerationService) backlite.Queue {
	return backlite.NewQueue(RenderDocumentProcessor(generator))
}
