package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bonhomie/fest-system/config"
	"github.com/bonhomie/fest-system/db"
	"github.com/bonhomie/fest-system/handlers"
	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/routes"
	"github.com/bonhomie/fest-system/services"
	"github.com/bonhomie/fest-system/storage"
	_ "github.com/lib/pq"
)

// schedulerInterval controls how often live events past their scheduled
// date are taken offline automatically.
const schedulerInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live hub started")

	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditRepository(dbConn)
	assignmentRepo := repositories.NewPostgresAssignmentRepository(dbConn)

	authService := services.NewAuthService(profileRepo)
	profileService := services.NewProfileService(profileRepo, auditRepo)
	eventService := services.NewEventService(eventRepo, assignmentRepo, profileRepo, auditRepo, uploader, hub, logger)
	registrationService := services.NewRegistrationService(dbConn, registrationRepo, eventRepo, profileRepo, uploader, logger)
	paymentService := services.NewPaymentService(dbConn, registrationRepo, auditRepo, logger)
	resultService := services.NewResultService(dbConn, resultRepo, eventRepo, registrationRepo, profileRepo, auditRepo, hub, logger)
	exportService := services.NewExportService(registrationRepo, eventRepo, profileRepo)
	dashboardService := services.NewDashboardService(profileRepo, eventRepo, registrationRepo, auditRepo)
	logger.Info("services initialized")

	// Take expired live events offline: once at startup, then on a ticker.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("live-status scheduler started", slog.Duration("interval", schedulerInterval))

		if err := eventService.AutoEndExpiredLive(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := eventService.AutoEndExpiredLive(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	router := routes.InitRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Profile:      handlers.NewProfileHandler(profileService, resultService),
		Event:        handlers.NewEventHandler(eventService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Payment:      handlers.NewPaymentHandler(paymentService),
		Result:       handlers.NewResultHandler(resultService, eventService),
		Export:       handlers.NewExportHandler(exportService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(hub, logger),
	}, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
