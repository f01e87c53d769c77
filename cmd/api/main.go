package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/handlers"
	"yourresumescanner/resume-scanner/internal/logger"
	"yourresumescanner/resume-scanner/internal/repositories"
	"yourresumescanner/resume-scanner/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize AI provider
	aiClient, err := services.NewAIClient(ctx, cfg.AI, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize AI client", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}
	zlog.Info("AI client initialized", zap.String("provider", cfg.AI.Provider), zap.String("model", aiClient.Model()))

	// Initialize result store
	store, history, cleanup, err := buildStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize result store", zap.String("store", cfg.Store.Kind), zap.Error(err))
	}
	defer cleanup()
	zlog.Info("result store initialized", zap.String("store", cfg.Store.Kind))

	// Initialize services
	inspector := services.NewPDFInspector(cfg.Upload.MaxFileSize)
	rasterizer := services.NewRasterizer(cfg.Rasterizer, cfg.Upload, zlog)
	analyzer := services.NewAnalyzer(aiClient, cfg.AI, zlog)
	scanService := services.NewScanService(inspector, rasterizer, analyzer, store, zlog)

	// Initialize handlers
	app := handlers.NewApp(cfg, &handlers.Handlers{
		Resume: handlers.NewResumeHandler(scanService, zlog),
		Scan:   handlers.NewScanHandler(scanService, inspector, rasterizer, cfg.Upload.MaxFileSize, zlog),
		Review: handlers.NewReviewHandler(store, history, zlog),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		cancel()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// buildStore returns the configured result store, the history view when the
// store has one, and a cleanup func releasing its resources.
func buildStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (services.ResultStore, services.HistoryStore, func(), error) {
	switch cfg.Store.Kind {
	case config.StoreRedis:
		client, err := config.InitRedis(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		store := services.NewRedisStore(client, cfg.Redis.Prefix, cfg.Store.TTL)
		return store, nil, func() { client.Close() }, nil

	case config.StoreDatabase:
		db, err := config.InitDatabase(cfg, zlog)
		if err != nil {
			return nil, nil, nil, err
		}

		var images services.ImageStorage
		if cfg.Store.PersistImages {
			images = services.NewImageStorage(cfg.Store.ImageDir, cfg.Store.ImageURLPath, cfg.Store.MaxImageMB, zlog)
			if err := images.EnsureUploadDir(); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to create image directory: %w", err)
			}
		}

		store := services.NewDatabaseStore(repositories.NewScanRepository(db), images, zlog)
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return store, store, cleanup, nil

	default:
		store := services.NewMemoryStore(cfg.Store.TTL)
		if cfg.Store.TTL <= 0 || cfg.Store.SweepInterval <= 0 {
			return store, nil, func() {}, nil
		}
		sweeper := services.NewSweeper(store, cfg.Store.SweepInterval, zlog)
		sweeper.Start(ctx)
		return store, nil, sweeper.Stop, nil
	}
}
