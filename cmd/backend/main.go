// Package main provides the entry point for the LinkBio profile service.
//
//	@title			LinkBio API
//	@version		1.0.0
//	@description	A hosted link-in-bio profile service with asynchronous analytics.
//
//	@contact.name	LinkBio Support
//	@contact.email	support@linkbio.dev
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"LinkBio-Backend/internal/analytics"
	"LinkBio-Backend/internal/auth"
	"LinkBio-Backend/internal/config"
	"LinkBio-Backend/internal/database"
	httpHandler "LinkBio-Backend/internal/handler/http"
	"LinkBio-Backend/internal/repository/postgres"
	"LinkBio-Backend/internal/service"
	"LinkBio-Backend/pkg/logger"
	"LinkBio-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "LinkBio-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkBio service", zap.String("env", cfg.Env))

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	uaParser, err := useragent.New(cfg.UserAgent.RegexesPath, log)
	if err != nil {
		log.Fatal("failed to initialize User-Agent parser", zap.Error(err))
	}

	storage := postgres.New(db, log)
	profiles := service.NewProfileService(storage, log)

	recorder := analytics.NewRecorder(storage, uaParser, log, analytics.Config{
		WorkerCount:     cfg.Analytics.WorkerCount,
		BufferSize:      cfg.Analytics.BufferSize,
		WriteTimeout:    cfg.Analytics.WriteTimeout,
		ShutdownTimeout: cfg.Analytics.ShutdownTimeout,
	})
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start analytics recorder", zap.Error(err))
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:       []byte(jwtSecret),
		SessionDuration: cfg.Auth.SessionDuration,
		Issuer:          cfg.Auth.Issuer,
	})
	tokenService := auth.NewTokenService()
	sender := &auth.LogSender{Log: log}

	httpAPIServer := httpHandler.NewServer(
		storage,
		profiles,
		recorder,
		jwtService,
		tokenService,
		sender,
		cfg.Auth.LoginTokenTTL,
		log,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpAPIServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkBio service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting requests first, then drain the analytics queue so
	// in-flight events get a chance to land.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := recorder.Stop(); err != nil {
		log.Error("failed to stop analytics recorder", zap.Error(err))
	} else {
		log.Info("analytics recorder stopped")
	}
}
