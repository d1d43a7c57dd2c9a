// Package services holds the document generation pipeline shared by the
// HTTP layer and the background task workers.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mkorchagin/docforge/internal/compiler"
	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/entities"
	"github.com/mkorchagin/docforge/internal/renderer"
	"github.com/mkorchagin/docforge/internal/storage"
)

// GenerationService runs the template-to-artifact pipeline: fetch source
// data, compile HTML, render the PDF and store it.
type GenerationService struct {
	db       *database.Database
	registry *connectors.Registry
	compiler *compiler.Compiler
	engine   renderer.Engine
	store    storage.Client
	timeout  time.Duration
}

func NewGenerationService(
	db *database.Database,
	registry *connectors.Registry,
	engine renderer.Engine,
	store storage.Client,
	timeout time.Duration,
) *GenerationService {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &GenerationService{
		db:       db,
		registry: registry,
		compiler: compiler.New(),
		engine:   engine,
		store:    store,
		timeout:  timeout,
	}
}

// CompileHTML compiles a stored template against resolved data.
func (s *GenerationService) CompileHTML(template *entities.Template, data map[string]any) (string, error) {
	doc, err := template.Document()
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	return s.compiler.Compile(doc, data), nil
}

// FetchData runs a stored data source's connector against a query. The
// connector is connected for the duration of the call only.
func (s *GenerationService) FetchData(ctx context.Context, ds *entities.DataSource, query map[string]any) (connectors.FetchResult, error) {
	cfg, err := s.db.ConnectorConfig(ds)
	if err != nil {
		return connectors.FetchResult{}, err
	}

	conn, err := s.registry.Create(cfg)
	if err != nil {
		return connectors.FetchResult{}, err
	}

	if err := conn.Connect(ctx); err != nil {
		return connectors.FetchResult{}, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Disconnect(ctx)

	result := conn.FetchData(ctx, query)
	if result.Success {
		if err := s.db.TouchDataSourceSync(ds); err != nil {
			log.Printf("Failed to record sync time for data source %s: %v", ds.ID, err)
		}
	}
	return result, nil
}

// TestConnection validates a stored data source's credentials.
func (s *GenerationService) TestConnection(ctx context.Context, ds *entities.DataSource) (bool, error) {
	cfg, err := s.db.ConnectorConfig(ds)
	if err != nil {
		return false, err
	}
	conn, err := s.registry.Create(cfg)
	if err != nil {
		return false, err
	}
	if err := conn.Connect(ctx); err != nil {
		return false, nil
	}
	defer conn.Disconnect(ctx)
	return conn.ValidateCredentials(ctx), nil
}

// ProcessDocument executes one generation job end to end and records the
// outcome on the document row. Task workers and the inline fallback both
// land here.
func (s *GenerationService) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := s.db.GetGeneratedDocumentByID(documentID)
	if err != nil {
		return fmt.Errorf("document %s not found: %w", documentID, err)
	}

	if err := s.db.MarkDocumentRunning(doc); err != nil {
		return err
	}

	path, err := s.generate(ctx, doc)
	if err != nil {
		if markErr := s.db.MarkDocumentFailed(doc, err.Error()); markErr != nil {
			log.Printf("Failed to record failure for document %s: %v", doc.ID, markErr)
		}
		return err
	}

	return s.db.MarkDocumentCompleted(doc, path)
}

func (s *GenerationService) generate(ctx context.Context, doc *entities.GeneratedDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	template, err := s.db.GetTemplate(doc.TemplateID, doc.UserID)
	if err != nil {
		return "", fmt.Errorf("template %s not found: %w", doc.TemplateID, err)
	}

	data, err := s.resolveData(ctx, doc)
	if err != nil {
		return "", err
	}

	html, err := s.CompileHTML(template, data)
	if err != nil {
		return "", err
	}

	var opts renderer.Options
	if doc.Options != "" {
		if err := json.Unmarshal([]byte(doc.Options), &opts); err != nil {
			return "", fmt.Errorf("failed to parse render options: %w", err)
		}
	}

	if s.engine == nil {
		return "", fmt.Errorf("renderer is not available")
	}
	pdf, err := s.engine.RenderPDF(ctx, html, opts)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("documents/%s.pdf", doc.ID)
	if err := storage.UploadBytes(ctx, s.store, path, pdf); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	return path, nil
}

// resolveData merges connector data with the request's inline data. Inline
// values win on key conflicts.
func (s *GenerationService) resolveData(ctx context.Context, doc *entities.GeneratedDocument) (map[string]any, error) {
	data := map[string]any{}

	if doc.DataSourceID != nil && *doc.DataSourceID != "" {
		ds, err := s.db.GetDataSource(*doc.DataSourceID, doc.UserID)
		if err != nil {
			return nil, fmt.Errorf("data source %s not found: %w", *doc.DataSourceID, err)
		}

		var query map[string]any
		if doc.SourceQuery != "" {
			if err := json.Unmarshal([]byte(doc.SourceQuery), &query); err != nil {
				return nil, fmt.Errorf("failed to parse source query: %w", err)
			}
		}

		result, err := s.FetchData(ctx, ds, query)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, fmt.Errorf("data source fetch failed: %s", strings.Join(result.Errors, "; "))
		}
		if record, ok := result.Data.(map[string]any); ok {
			data = record
		} else {
			data["records"] = result.Data
		}
	}

	if doc.InputData != "" {
		var inline map[string]any
		if err := json.Unmarshal([]byte(doc.InputData), &inline); err != nil {
			return nil, fmt.Errorf("failed to parse input data: %w", err)
		}
		for key, value := range inline {
			data[key] = value
		}
	}

	return data, nil
}
