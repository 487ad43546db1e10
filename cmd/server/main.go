package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/api"
	"github.com/foodshare/foodshare/internal/auth"
	"github.com/foodshare/foodshare/internal/cache"
	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/feed"
	"github.com/foodshare/foodshare/internal/upload"
	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting FoodShare API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Storage
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(context.Background()); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	uploader, err := upload.New(&cfg.Upload)
	if err != nil {
		logger.Fatal("Failed to configure uploader", zap.Error(err))
	}

	// Services
	repo := db.NewRepository(database.DB)
	catalog := cache.NewPostCatalog(redisCache, cfg.Redis.PostTTL)
	hub := feed.NewHub()

	services := api.Services{
		Posts:   donation.NewPostService(repo, uploader, catalog, metrics, hub),
		Listing: donation.NewListingService(repo, catalog),
		Claims:  donation.NewClaimService(repo, metrics, hub),
		Auth:    auth.New(repo, &cfg.Auth),
		Feed:    hub,
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	api.NewRouter(cfg, database, redisCache, services).SetupRoutes(engine)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	metricsSrv := telemetry.NewMetricsServer(&cfg.Telemetry, cfg.Server.Host, cfg.Server.Port)
	if metricsSrv != nil {
		go func() {
			logger.Info("Metrics server starting", zap.String("address", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
