package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/entities"
	"github.com/mkorchagin/docforge/internal/renderer"
	"github.com/mkorchagin/docforge/internal/services"
	"github.com/mkorchagin/docforge/internal/tasks"
)

type GenerateController struct {
	db         *database.Database
	generator  *services.GenerationService
	taskClient *tasks.Client
}

func NewGenerateController(db *database.Database, generator *services.GenerationService, taskClient *tasks.Client) *GenerateController {
	return &GenerateController{db: db, generator: generator, taskClient: taskClient}
}

type generateRequest struct {
	TemplateID   string           `json:"template_id" binding:"required"`
	DataSourceID string           `json:"data_source_id"`
	Data         map[string]any   `json:"data"`
	Query        map[string]any   `json:"query"`
	Options      renderer.Options `json:"options"`
}

type previewRequest struct {
	TemplateID string         `json:"template_id"`
	Template   map[string]any `json:"template"`
	Data       map[string]any `json:"data"`
}

func documentResponse(doc *entities.GeneratedDocument) gin.H {
	response := gin.H{
		"id":          doc.ID,
		"template_id": doc.TemplateID,
		"status":      doc.Status,
		"created_at":  doc.CreatedAt,
		"updated_at":  doc.UpdatedAt,
	}
	if doc.DataSourceID != nil {
		response["data_source_id"] = *doc.DataSourceID
	}
	if doc.Error != "" {
		response["error"] = doc.Error
	}
	if doc.Status == entities.DocumentStatusCompleted && doc.StoragePath != "" {
		response["download_path"] = doc.StoragePath
	}
	return response
}

// Generate enqueues a generation job. Without a task queue the document is
// rendered inline before responding.
func (g *GenerateController) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c)
	if _, err := g.db.GetTemplate(req.TemplateID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})
		return
	}

	doc := &entities.GeneratedDocument{
		UserID:     userID,
		TemplateID: req.TemplateID,
	}
	if req.DataSourceID != "" {
		if _, err := g.db.GetDataSource(req.DataSourceID, userID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "data source not found"})
			return
		}
		doc.DataSourceID = &req.DataSourceID
	}

	var err error
	if doc.InputData, err = marshalDocument(req.Data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data payload"})
		return
	}
	if doc.SourceQuery, err = marshalDocument(req.Query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query payload"})
		return
	}
	options, err := json.Marshal(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options payload"})
		return
	}
	doc.Options = string(options)

	if err := g.db.CreateGeneratedDocument(doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create document"})
		return
	}

	if g.taskClient != nil {
		_, err := g.taskClient.Add(tasks.RenderDocumentTask{DocumentID: doc.ID}).Save()
		if err == nil {
			c.JSON(http.StatusAccepted, documentResponse(doc))
			return
		}
		log.Printf("Failed to enqueue render task for %s, running inline: %v", doc.ID, err)
	}

	// Inline fallback
	if err := g.generator.ProcessDocument(c.Request.Context(), doc.ID); err != nil {
		log.Printf("Inline generation failed for %s: %v", doc.ID, err)
	}
	refreshed, err := g.db.GetGeneratedDocument(doc.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}
	c.JSON(http.StatusOK, documentResponse(refreshed))
}

func (g *GenerateController) List(c *gin.Context) {
	docs, err := g.db.GetGeneratedDocumentsForUser(auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	response := make([]gin.H, 0, len(docs))
	for i := range docs {
		response = append(response, documentResponse(&docs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"documents": response, "count": len(response)})
}

func (g *GenerateController) Status(c *gin.Context) {
	doc, err := g.db.GetGeneratedDocument(c.Param("id"), auth.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

// Preview compiles a template to HTML without rendering a PDF. Accepts
// either a stored template id or an inline template document.
func (g *GenerateController) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := &entities.Template{}
	switch {
	case req.TemplateID != "":
		stored, err := g.db.GetTemplate(req.TemplateID, auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		template = stored
	case req.Template != nil:
		templateJSON, err := marshalDocument(req.Template)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template document"})
			return
		}
		template.TemplateJSON = templateJSON
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id or template is required"})
		return
	}

	html, err := g.generator.CompileHTML(template, req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": html})
}
