package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/entities"
)

type TemplatesController struct {
	db *database.Database
}

func NewTemplatesController(db *database.Database) *TemplatesController {
	return &TemplatesController{db: db}
}

type templateRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Template    map[string]any `json:"template"`
	IsActive    *bool          `json:"is_active"`
}

// templateResponse mirrors the entity with the deserialized document
// attached.
func templateResponse(template *entities.Template) gin.H {
	doc, err := template.Document()
	if err != nil {
		doc = map[string]any{}
	}
	return gin.H{
		"id":          template.ID,
		"name":        template.Name,
		"description": template.Description,
		"template":    doc,
		"is_active":   template.IsActive,
		"created_at":  template.CreatedAt,
		"updated_at":  template.UpdatedAt,
	}
}

func (t *TemplatesController) List(c *gin.Context) {
	templates, err := t.db.GetTemplatesForUser(auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}

	response := make([]gin.H, 0, len(templates))
	for i := range templates {
		response = append(response, templateResponse(&templates[i]))
	}
	c.JSON(http.StatusOK, gin.H{"templates": response, "count": len(response)})
}

func (t *TemplatesController) Create(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templateJSON, err := marshalDocument(req.Template)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template document"})
		return
	}

	template := &entities.Template{
		UserID:       auth.UserID(c),
		Name:         req.Name,
		Description:  req.Description,
		TemplateJSON: templateJSON,
		IsActive:     true,
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := t.db.CreateTemplate(template); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})
		return
	}
	c.JSON(http.StatusCreated, templateResponse(template))
}

func (t *TemplatesController) Get(c *gin.Context) {
	template, err := t.db.GetTemplate(c.Param("id"), auth.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})
		return
	}
	c.JSON(http.StatusOK, templateResponse(template))
}

func (t *TemplatesController) Update(c *gin.Context) {
	template, err := t.db.GetTemplate(c.Param("id"), auth.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template.Name = req.Name
	template.Description = req.Description
	if req.Template != nil {
		templateJSON, err := marshalDocument(req.Template)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template document"})
			return
		}
		template.TemplateJSON = templateJSON
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := t.db.UpdateTemplate(template); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update template"})
		return
	}
	c.JSON(http.StatusOK, templateResponse(template))
}

func (t *TemplatesController) Delete(c *gin.Context) {
	if err := t.db.DeleteTemplate(c.Param("id"), auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func marshalDocument(doc map[string]any) (string, error) {
	if doc == nil {
		return "", nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
