package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeToken AuthMode = "token" // Local user database with API tokens
)

type (
	Config struct {
		HTTP
		Global
		Database
		Artifacts
		Renderer
		Tasks
		Cleanup
		Auth
		Crypto
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Artifacts struct {
		Dir       string // Directory generated documents are stored under
		URLPrefix string // Public URL prefix artifacts are served from
	}
	Renderer struct {
		Enabled bool // Disable to run without a local Chrome install
		Timeout time.Duration
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Cleanup struct {
		Enabled   bool
		Schedule  string        // Cron format: "0 * * * *" = hourly
		Retention time.Duration // How long finished documents are kept
	}
	Auth struct {
		Mode       AuthMode
		BcryptCost int
	}
	Crypto struct {
		Key     string // Base64-encoded 32-byte key
		KeyFile string // Fallback: file holding the base64 key
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8199)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("artifacts_dir", "./artifacts")
	v.SetDefault("artifacts_url_prefix", "/downloads")

	// Renderer defaults
	v.SetDefault("renderer_enabled", true)
	v.SetDefault("renderer_timeout", "60s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Artifact cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("cleanup_retention", "168h")     // 7 days

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_bcrypt_cost", 12)

	// Crypto defaults
	v.SetDefault("encryption_key", "")
	v.SetDefault("encryption_key_file", DefaultKeyFilePath)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Artifacts: Artifacts{
			Dir:       v.GetString("ARTIFACTS_DIR"),
			URLPrefix: v.GetString("ARTIFACTS_URL_PREFIX"),
		},
		Renderer: Renderer{
			Enabled: v.GetBool("RENDERER_ENABLED"),
			Timeout: v.GetDuration("RENDERER_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Cleanup: Cleanup{
			Enabled:   v.GetBool("CLEANUP_ENABLED"),
			Schedule:  v.GetString("CLEANUP_SCHEDULE"),
			Retention: v.GetDuration("CLEANUP_RETENTION"),
		},
		Auth: Auth{
			Mode:       AuthMode(v.GetString("AUTH_MODE")),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Crypto: Crypto{
			Key:     v.GetString("ENCRYPTION_KEY"),
			KeyFile: v.GetString("ENCRYPTION_KEY_FILE"),
		},
	}
}
