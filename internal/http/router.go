package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mkorchagin/docforge/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health endpoints stay outside authentication
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Login is public; everything else under /api requires the middleware
	if cfg.AuthService != nil {
		authController := NewAuthController(cfg.AuthService)
		router.POST("/api/auth/login", authController.Login)
	}

	api := router.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Handler())
	} else {
		api.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	templatesController := NewTemplatesController(cfg.Database)
	api.GET("/templates", templatesController.List)
	api.POST("/templates", templatesController.Create)
	api.GET("/templates/:id", templatesController.Get)
	api.PUT("/templates/:id", templatesController.Update)
	api.DELETE("/templates/:id", templatesController.Delete)

	dataSourcesController := NewDataSourcesController(cfg.Database, cfg.Registry, cfg.Generator)
	api.GET("/datasources/types", dataSourcesController.ListTypes)
	api.GET("/datasources", dataSourcesController.List)
	api.POST("/datasources", dataSourcesController.Create)
	api.GET("/datasources/:id", dataSourcesController.Get)
	api.PUT("/datasources/:id", dataSourcesController.Update)
	api.DELETE("/datasources/:id", dataSourcesController.Delete)
	api.POST("/datasources/:id/test", dataSourcesController.Test)
	api.POST("/datasources/:id/fetch", dataSourcesController.Fetch)

	generateController := NewGenerateController(cfg.Database, cfg.Generator, cfg.TaskClient)
	api.POST("/generate", generateController.Generate)
	api.GET("/generate", generateController.List)
	api.GET("/generate/:id", generateController.Status)
	api.POST("/generate/preview", generateController.Preview)

	// Generated artifacts
	if cfg.ArtifactsDir != "" {
		router.Static(cfg.ArtifactsURLPrefix, cfg.ArtifactsDir)
	}

	return router
}
