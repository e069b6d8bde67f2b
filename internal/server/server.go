// Package server provides the main server initialization and run logic.
package server

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

	"github.com/nebari-dev/quill/internal/api"
	"github.com/nebari-dev/quill/internal/api/handlers"
	"github.com/nebari-dev/quill/internal/cache"
	"github.com/nebari-dev/quill/internal/config"
	"github.com/nebari-dev/quill/internal/db"
	"github.com/nebari-dev/quill/internal/logger"
	"github.com/nebari-dev/quill/internal/store"
)

// Config holds the server configuration options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Version string // Version string to report
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	// Set version in handlers
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	// Load configuration
	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from CLI flag if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	// Initialize logger
	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting Quill server", "version", cfg.Version, "mode", appCfg.Server.Mode)

	if appCfg.Auth.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("Using the default JWT secret; set QUILL_AUTH_JWT_SECRET before exposing this server")
	}

	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}

	// Initialize database
	database, err := db.New(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	// Run migrations
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	// Create default admin user if configured
	if _, err := db.CreateDefaultAdmin(database, db.AdminSeedFromEnv()); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	st := store.New(database)

	identities, err := createIdentityCache(appCfg.Cache, st)
	if err != nil {
		return fmt.Errorf("failed to initialize identity cache: %w", err)
	}
	if identities != nil {
		defer identities.Close()
		slog.Info("Identity cache initialized", "type", appCfg.Cache.Type, "ttl", appCfg.Cache.IdentityTTL)
	}

	router := api.NewRouter(appCfg, st, identities)

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for context cancellation or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server stopped")

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}

	slog.Info("Quill exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	// Wait for signal or error
	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		// Wait for server to finish
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// createIdentityCache builds the identity cache selected by configuration.
// It returns nil for cache type "none".
func createIdentityCache(cfg config.CacheConfig, st *store.Store) (*cache.IdentityCache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "valkey":
		if cfg.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when cache type is valkey")
		}
		client, err := cache.NewClient(cfg.ValkeyAddr)
		if err != nil {
			return nil, err
		}
		return cache.NewIdentityCache(st, client, cfg.IdentityTTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: none, valkey)", cfg.Type)
	}
}
