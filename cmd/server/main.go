package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/application"
	"github.com/campus-sports/service-booking/internal/config"
	"github.com/campus-sports/service-booking/internal/events"
	"github.com/campus-sports/service-booking/internal/handler"
	"github.com/campus-sports/service-booking/internal/platform/auth"
	"github.com/campus-sports/service-booking/internal/platform/database"
	"github.com/campus-sports/service-booking/internal/platform/health"
	"github.com/campus-sports/service-booking/internal/platform/kafka"
	"github.com/campus-sports/service-booking/internal/platform/logger"
	"github.com/campus-sports/service-booking/internal/platform/middleware"
	"github.com/campus-sports/service-booking/internal/repository"
	"github.com/campus-sports/service-booking/internal/settings"
	"github.com/campus-sports/service-booking/internal/watcher"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := db.AutoMigrate(
		&repository.BookingModel{},
		&repository.SlotOccupancyModel{},
		&repository.UserModel{},
		&repository.PenaltyModel{},
		&repository.CourtModel{},
		&repository.SettingModel{},
	); err != nil {
		zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
	}
	zapLogger.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	courtRepo := repository.NewCourtRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize policy store
	policyStore := settings.NewStore(settingsRepo, settings.DefaultTTL, zapLogger)

	// Initialize Kafka producer, notifier and the settings-invalidation consumer
	var notifier application.Notifier = events.NopNotifier{}
	var announcer application.SettingsAnnouncer = events.NopSettingsAnnouncer{}
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.KafkaConfig.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		notifier = events.NewKafkaNotifier(kafkaProducer, cfg.KafkaConfig.NotificationTopic, zapLogger)
		announcer = events.NewSettingsPublisher(kafkaProducer, cfg.KafkaConfig.SettingsTopic, zapLogger)

		settingsConsumer := events.NewSettingsConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupID,
			cfg.KafkaConfig.SettingsTopic,
			policyStore,
			zapLogger,
		)
		defer settingsConsumer.Close()

		go func() {
			zapLogger.Info("starting settings event consumer")
			if err := settingsConsumer.Start(consumerCtx); err != nil {
				if consumerCtx.Err() == nil {
					zapLogger.Error("settings event consumer failed", zap.Error(err))
				}
			}
		}()
	}

	// Initialize application services
	rightsService := application.NewRightsService(bookingRepo, userRepo, policyStore, zapLogger)
	penaltyService := application.NewPenaltyService(userRepo, penaltyRepo, bookingRepo, notifier, zapLogger)
	bookingService := application.NewBookingService(bookingRepo, userRepo, courtRepo, rightsService, penaltyService, policyStore, notifier, zapLogger)
	adminService := application.NewAdminService(userRepo, courtRepo, settingsRepo, announcer, policyStore, zapLogger)

	// Start the expiry watcher
	watcherCtx, watcherCancel := context.WithCancel(context.Background())
	defer watcherCancel()

	expiryWatcher := watcher.NewExpiryWatcher(bookingRepo, penaltyService, policyStore, notifier, zapLogger)
	if err := expiryWatcher.ProtectPendingAtStartup(watcherCtx); err != nil {
		zapLogger.Error("startup protection pass failed", zap.Error(err))
	}
	expiryWatcher.Start(watcherCtx)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, rightsService, penaltyService)
	adminHandler := handler.NewAdminHandler(adminService, bookingService, expiryWatcher)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Stop background workers
	consumerCancel()
	watcherCancel()
	expiryWatcher.Stop()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
