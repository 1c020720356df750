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

	"bookmarkd/internal/config"
	"bookmarkd/internal/handlers"
	"bookmarkd/internal/middleware"
	"bookmarkd/internal/repository"
	"bookmarkd/internal/services"
	"bookmarkd/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Setup Logger
	var handler slog.Handler
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if cfg.JWTSecretKey == "" {
		// Tokens signed with this key do not survive a restart.
		cfg.JWTSecretKey = utils.NewTokenID() + utils.NewTokenID()
		logger.Warn("No signing key configured, generated an ephemeral one", "env", cfg.AppEnv)
	}

	// 3. Initialize Database
	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// 4. Run Migrations
	if err := repository.Migrate(ctx, cfg, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 5. Initialize Redis
	rdb, err := repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
	if err != nil {
		logger.Warn("Failed to connect to Redis, redirect cache disabled", "error", err)
	} else {
		defer rdb.Close()
	}

	// 6. Initialize Services
	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(db, tokenService)
	shortenerService := services.NewShortenerService(cfg.ShortCodeMaxAttempts)
	linkCache := repository.NewRedisLinkCache(rdb, cfg.CacheTTL)
	bookmarkService := services.NewBookmarkService(db, shortenerService, linkCache, logger)
	geoIPService := services.NewGeoIPService(cfg.GeoIPDBPath, logger)
	defer geoIPService.Close()
	auditService := services.NewAuditService(db, logger, geoIPService)
	qrService := services.NewQRService()
	metrics := middleware.NewMetrics()
	rateLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, logger)

	// 7. Initialize Handler
	h := handlers.NewHandler(cfg, logger, authService, bookmarkService, tokenService, auditService, qrService, metrics)

	// 8. Setup Router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := h.SetupRouter(rateLimiter)

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Background Context for workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go auditService.Start(workerCtx)
	rateLimiter.StartCleanup(10*time.Minute, workerCtx.Done())

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	workerCancel()
	// Give the audit worker a moment to flush queued entries.
	time.Sleep(100 * time.Millisecond)

	logger.Info("Server exiting")
	return nil
}
