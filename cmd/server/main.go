package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/giftwish/giftwish-backend/config"
	"github.com/giftwish/giftwish-backend/internal/app/controller"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/internal/app/service"
	"github.com/giftwish/giftwish-backend/internal/db"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/giftwish/giftwish-backend/internal/router"
	"github.com/giftwish/giftwish-backend/internal/scheduler"
	"github.com/giftwish/giftwish-backend/internal/storage"
	ws "github.com/giftwish/giftwish-backend/internal/websocket"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/giftwish/giftwish-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting GIFTWISH Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the link preview cache; the server runs fine without it
	previewCache := false
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, link previews will not be cached", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			previewCache = true
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// WebSocket hub for change notifications
	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	itemRepo := repository.NewItemRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, resetRepo, &cfg.JWT)
	wishlistService := service.NewWishlistService(db.GetDB(), wishlistRepo)
	itemService := service.NewItemService(db.GetDB(), wishlistRepo, itemRepo, hub)
	reservationService := service.NewReservationService(db.GetDB(), hub)
	previewService := service.NewPreviewService(&cfg.Preview, previewCache)

	// S3 storage for item images
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	wishlistController := controller.NewWishlistController(wishlistService, hub)
	itemController := controller.NewItemController(itemService)
	reservationController := controller.NewReservationController(reservationService)
	previewController := controller.NewPreviewController(previewService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly cleanup of expired password reset tokens
	cleanup := scheduler.NewCleanupScheduler(resetRepo)
	if err := cleanup.Start(); err != nil {
		logger.Warn("Cleanup scheduler failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		wishlistController,
		itemController,
		reservationController,
		previewController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
