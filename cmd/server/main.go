package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/couponTracker/coupon-ocr-service/api"
	"github.com/couponTracker/coupon-ocr-service/internal/auth"
	"github.com/couponTracker/coupon-ocr-service/internal/cache"
	"github.com/couponTracker/coupon-ocr-service/internal/config"
	"github.com/couponTracker/coupon-ocr-service/internal/observability"
	"github.com/couponTracker/coupon-ocr-service/internal/scan"
	"github.com/couponTracker/coupon-ocr-service/internal/storage"
)

func main() {
	// Secrets usually live in a .env file during development
	_ = godotenv.Load()

	fs := ff.NewFlagSet("coupon-ocr-service")
	var (
		configPath = fs.StringLong("config", "config.yaml", "path to YAML configuration file")
		logLevel   = fs.StringLong("log-level", "info", "log level: trace, debug, info, warn, error")
		logFormat  = fs.StringLong("log-format", "json", "log format: json or console")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("COUPONSCAN")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:   *logLevel,
		Format:  *logFormat,
		Service: "coupon-ocr-service",
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}

	// Initialize JWT
	if err := auth.Init(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize auth")
	}
	logger.Info().Msg("JWT authentication initialized")

	// Initialize Redis cache
	if err := cache.Init(); err != nil {
		logger.Warn().Err(err).Msg("Redis not available, scan results will not be cached")
	} else {
		defer cache.Close()
		logger.Info().Msg("Redis cache initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		logger.Warn().Err(err).Msg("MinIO not available, coupon images will not be archived")
	} else {
		logger.Info().Msg("MinIO storage initialized")
	}

	// Build the scan pipeline from the configured engines and strategies
	scanner, provider, err := scan.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build scan pipeline")
	}
	if provider != nil {
		defer provider.Close()
	}

	// Probe engines once so the first scan does not pay for it
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 30*time.Second)
	engines := scanner.RefreshAvailability(probeCtx)
	cancelProbe()
	for id, up := range engines {
		logger.Info().Str("engine", id).Bool("available", up).Msg("Engine probed")
	}

	handler := api.NewHandler(cfg, scanner, logger)
	router := handler.SetupRoutes()

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      protectedRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // scans with network engines take a while
		IdleTimeout:  60 * time.Second,
	}

	logger.Info().
		Str("addr", addr).
		Str("version", api.Version).
		Str("aiProvider", cfg.AI.DefaultProvider).
		Bool("cache", cache.Client != nil).
		Bool("storage", storage.Client != nil).
		Msg("Starting Coupon OCR Service")

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}
}
