package http

import (
	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/services"
	"github.com/mkorchagin/docforge/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Generator *services.GenerationService
	Registry  *connectors.Registry

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware

	// Artifact serving
	ArtifactsDir       string
	ArtifactsURLPrefix string

	// Task queue client (optional; generation falls back to inline work)
	TaskClient *tasks.Client

	// Application info
	Version string
}
