package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/entities"
	"github.com/mkorchagin/docforge/internal/services"
)

type DataSourcesController struct {
	db        *database.Database
	registry  *connectors.Registry
	generator *services.GenerationService
}

func NewDataSourcesController(db *database.Database, registry *connectors.Registry, generator *services.GenerationService) *DataSourcesController {
	return &DataSourcesController{db: db, registry: registry, generator: generator}
}

type dataSourceRequest struct {
	Name          string                    `json:"name" binding:"required"`
	Type          string                    `json:"type"`
	Settings      map[string]any            `json:"settings"`
	FieldMappings []connectors.FieldMapping `json:"field_mappings"`
	IsActive      *bool                     `json:"is_active"`
}

// Settings are write-only: they hold credentials and never leave the server.
func dataSourceResponse(ds *entities.DataSource) gin.H {
	return gin.H{
		"id":             ds.ID,
		"name":           ds.Name,
		"type":           ds.Type,
		"is_active":      ds.IsActive,
		"last_synced_at": ds.LastSyncedAt,
		"created_at":     ds.CreatedAt,
		"updated_at":     ds.UpdatedAt,
	}
}

func (d *DataSourcesController) ListTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": d.registry.ListAvailable()})
}

func (d *DataSourcesController) List(c *gin.Context) {
	sources, err := d.db.GetDataSourcesForUser(auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list data sources"})
		return
	}

	response := make([]gin.H, 0, len(sources))
	for i := range sources {
		response = append(response, dataSourceResponse(&sources[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data_sources": response, "count": len(response)})
}

func (d *DataSourcesController) Create(c *gin.Context) {
	var req dataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject unknown connector types up front
	if _, err := d.registry.Create(connectors.Config{Type: req.Type}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ds := &entities.DataSource{
		UserID:   auth.UserID(c),
		Name:     req.Name,
		Type:     req.Type,
		IsActive: true,
	}
	if req.IsActive != nil {
		ds.IsActive = *req.IsActive
	}

	if err := d.db.CreateDataSource(ds, req.Settings, req.FieldMappings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create data source"})
		return
	}
	c.JSON(http.StatusCreated, dataSourceResponse(ds))
}

func (d *DataSourcesController) Get(c *gin.Context) {
	ds, ok := d.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dataSourceResponse(ds))
}

func (d *DataSourcesController) Update(c *gin.Context) {
	ds, ok := d.load(c)
	if !ok {
		return
	}

	var req dataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ds.Name = req.Name
	if req.Type != "" && req.Type != ds.Type {
		if _, err := d.registry.Create(connectors.Config{Type: req.Type}); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ds.Type = req.Type
	}
	if req.IsActive != nil {
		ds.IsActive = *req.IsActive
	}

	if err := d.db.UpdateDataSource(ds, req.Settings, req.FieldMappings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update data source"})
		return
	}
	c.JSON(http.StatusOK, dataSourceResponse(ds))
}

func (d *DataSourcesController) Delete(c *gin.Context) {
	if err := d.db.DeleteDataSource(c.Param("id"), auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete data source"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Test checks the stored credentials against the upstream service.
func (d *DataSourcesController) Test(c *gin.Context) {
	ds, ok := d.load(c)
	if !ok {
		return
	}

	valid, err := d.generator.TestConnection(c.Request.Context(), ds)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// Fetch runs the connector with the posted query and returns the mapped
// records.
func (d *DataSourcesController) Fetch(c *gin.Context) {
	ds, ok := d.load(c)
	if !ok {
		return
	}

	// The query body is optional
	var query map[string]any
	if err := c.ShouldBindJSON(&query); err != nil {
		query = map[string]any{}
	}

	result, err := d.generator.FetchData(c.Request.Context(), ds, query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (d *DataSourcesController) load(c *gin.Context) (*entities.DataSource, bool) {
	ds, err := d.db.GetDataSource(c.Param("id"), auth.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "data source not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load data source"})
		return nil, false
	}
	return ds, true
}
