package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/handlers"
	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/storage"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
	"github.com/SAP-F-2025/learning-portal-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		Identity:    casdoor.NewIdentityProvider(cfg.Casdoor),
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	ctx := context.Background()

	files, err := storage.NewFileStore(ctx, cfg.Storage, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	publisher, err := events.NewEventPublisher(cfg.Kafka, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()
	if len(cfg.Kafka.Brokers) == 0 {
		watchReviewQueue(listenCtx, publisher, logger)
	}

	m := metrics.New()

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repoManager.GetRepository(),
		Tokens:    auth.NewTokenIssuer(cfg.JWT),
		Cache:     repoManager.Cache(),
		Publisher: publisher,
		Files:     files,
		Metrics:   m,
		Logger:    slogLogger,
		Validator: validator.New(),
	}, services.ServiceManagerConfig{
		MaxUploadSize: cfg.MaxUploadSize,
		SeedDemoData:  cfg.SeedDemoData,
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Setup Gin router
	if cfg.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, m)
	handlers.NewHandlerManager(serviceManager, m, logger, cfg.MaxUploadSize).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopListening()

	// Closes the publisher, file store, database and Redis.
	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
}

// watchReviewQueue logs new submissions so an operator can see the review
// queue grow without a broker attached.
func watchReviewQueue(ctx context.Context, publisher *events.WatermillEventPublisher, logger utils.Logger) {
	err := publisher.Listen(ctx, events.ResourceSubmitted, func(_ context.Context, event events.Event) error {
		logger.Info("Resource awaiting review", "event_id", event.ID, "data", event.Data)
		return nil
	})
	if err != nil {
		logger.Warn("Review queue listener not started", "error", err)
	}
}
