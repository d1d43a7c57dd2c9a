package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/config"
	"github.com/mkorchagin/docforge/internal/connectors/builtin"
	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/database"
	http_controllers "github.com/mkorchagin/docforge/internal/http"
	"github.com/mkorchagin/docforge/internal/renderer"
	"github.com/mkorchagin/docforge/internal/scheduler"
	"github.com/mkorchagin/docforge/internal/services"
	"github.com/mkorchagin/docforge/internal/storage/providers/local"
	"github.com/mkorchagin/docforge/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting docforge v%s", version)

	encryptor, err := crypto.ResolveEncryptor(cfg.Crypto.Key, cfg.Crypto.KeyFile)
	if err != nil {
		log.Fatalf("Failed to resolve encryption key: %v", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path, encryptor)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store, err := local.NewClient(cfg.Artifacts.Dir, cfg.Artifacts.URLPrefix)
	if err != nil {
		log.Fatalf("Failed to initialize artifact storage: %v", err)
	}

	// The renderer is optional so the API can run on hosts without Chrome;
	// generation requests then fail with a recorded error.
	var engine renderer.Engine
	if cfg.Renderer.Enabled {
		chrome, err := renderer.NewChromeEngine(context.Background())
		if err != nil {
			log.Printf("WARNING: Failed to start renderer, generation disabled: %v", err)
		} else {
			engine = chrome
			defer chrome.Close()
		}
	}

	registry := builtin.NewDefaultRegistry()
	generator := services.NewGenerationService(db, registry, engine, store, cfg.Renderer.Timeout)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRenderDocumentQueue(generator),
			tasks.NewCleanupArtifactsQueue(db, store),
		)

		taskCtx, taskCtxCancel := context.WithCancel(context.Background())
		defer taskCtxCancel()
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Cleanup)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Printf("WARNING: Failed to start cleanup scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	if cfg.Auth.Mode == config.AuthModeToken {
		log.Printf("Authentication mode: token")
		authService = auth.NewService(db, cfg.Auth)
		authMiddleware = auth.NewMiddleware(authService, cfg.Auth)
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Generator:          generator,
		Registry:           registry,
		AuthService:        authService,
		AuthMiddleware:     authMiddleware,
		ArtifactsDir:       store.Root(),
		ArtifactsURLPrefix: cfg.Artifacts.URLPrefix,
		TaskClient:         taskClient,
		Version:            version,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	})
}
