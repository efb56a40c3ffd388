package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Audit
		Import
		Enrichment
		Tasks
		Scheduler
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
	Audit struct {
		Enabled bool
		Dir     string
	}
	Import struct {
		MaxUploadBytes int64 // Cap on uploaded export files
		DefaultOwnerID uint  // Owner imports attach to when none is supplied
	}
	Enrichment struct {
		Enabled    bool
		SweepLimit int // Max books enriched per sweep
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
	Scheduler struct {
		Enabled            bool
		EnrichmentSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Audit defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_dir", "./audit")

	// Import defaults
	v.SetDefault("import_max_upload_bytes", 16<<20) // 16 MiB
	v.SetDefault("import_default_owner_id", 1)

	// Enrichment defaults
	v.SetDefault("enrichment_enabled", true)
	v.SetDefault("enrichment_sweep_limit", 50)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	// Enrichment lookups share a 1 req/s catalog rate limiter; one worker,
	// and a release window that outlasts the 60m sweep queue.
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "90m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Scheduler defaults
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("enrichment_schedule", "0 3 * * *") // Daily at 03:00

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
		Audit: Audit{
			Enabled: v.GetBool("AUDIT_ENABLED"),
			Dir:     v.GetString("AUDIT_DIR"),
		},
		Import: Import{
			MaxUploadBytes: v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
			DefaultOwnerID: uint(v.GetInt("IMPORT_DEFAULT_OWNER_ID")),
		},
		Enrichment: Enrichment{
			Enabled:    v.GetBool("ENRICHMENT_ENABLED"),
			SweepLimit: v.GetInt("ENRICHMENT_SWEEP_LIMIT"),
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
		Scheduler: Scheduler{
			Enabled:            v.GetBool("SCHEDULER_ENABLED"),
			EnrichmentSchedule: v.GetString("ENRICHMENT_SCHEDULE"),
		},
	}
}
