package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/readstack/readstack/internal/audit"
	"github.com/readstack/readstack/internal/config"
	"github.com/readstack/readstack/internal/covers"
	"github.com/readstack/readstack/internal/database"
	"github.com/readstack/readstack/internal/database/books"
	http_controllers "github.com/readstack/readstack/internal/http"
	"github.com/readstack/readstack/internal/metadata"
	"github.com/readstack/readstack/internal/scheduler"
	"github.com/readstack/readstack/internal/services"
	"github.com/readstack/readstack/internal/tasks"
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

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue and scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting ReadStack v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	importService := services.NewImportService(bookRepo)

	// Create metadata enricher for filling book gaps from OpenLibrary
	openLibraryClient := metadata.NewOpenLibraryClient()
	metadataEnricher := metadata.NewEnricher(openLibraryClient, bookRepo)
	importService.SetClassifier(metadata.NewLookupClassifier(openLibraryClient))

	// Cover cache keeps local copies of enriched cover images
	coversDir := filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	coverCache, err := covers.NewCache(coversDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
		coverCache = nil
	} else {
		metadataEnricher.SetCoverCache(coverCache)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
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

		// Register task queues
		taskClient.Register(
			tasks.NewEnrichBookQueue(metadataEnricher),
			tasks.NewEnrichAllBooksQueue(metadataEnricher),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Nightly enrichment sweep requires the task queue
	var sweep *scheduler.EnrichmentSweepScheduler
	var sweepCtxCancel context.CancelFunc
	if cfg.Enrichment.Enabled && cfg.Scheduler.Enabled && taskClient != nil {
		sweep = scheduler.NewEnrichmentSweepScheduler(
			taskClient,
			cfg.Scheduler.EnrichmentSchedule,
			cfg.Enrichment.SweepLimit,
		)

		var sweepCtx context.Context
		sweepCtx, sweepCtxCancel = context.WithCancel(context.Background())
		if err := sweep.Start(sweepCtx); err != nil {
			log.Fatalf("Failed to start enrichment scheduler: %v", err)
		}
	}

	importController := http_controllers.NewImportController(
		importService,
		cfg.Import.MaxUploadBytes,
		cfg.Import.DefaultOwnerID,
	)
	if cfg.Enrichment.Enabled && sweep != nil {
		importController.SetEnrichmentTrigger(sweep)
	}
	if cfg.Audit.Enabled && cfg.Audit.Dir != "" {
		importController.SetUploadArchiver(audit.NewArchive(cfg.Audit.Dir))
	}

	routerCfg := http_controllers.RouterConfig{
		Health:  http_controllers.NewHealthController(db, version),
		Imports: importController,
	}
	if coverCache != nil {
		routerCfg.CoversDir = coverCache.Dir()
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
			sweepCtxCancel()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
