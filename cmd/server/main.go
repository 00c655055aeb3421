package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lanshare/internal/server/api"
	"lanshare/internal/server/config"
	"lanshare/internal/server/database"
	"lanshare/internal/server/render"
	"lanshare/internal/server/service"
	"lanshare/internal/server/storage"
)

func main() {
	// Load config
	cfg := config.Load()

	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"root_dir", cfg.RootDir,
		"max_upload_size", cfg.MaxUploadSize,
		"protected_files", cfg.ProtectedFiles,
		"listing_theme", cfg.ListingTheme,
		"audit_enabled", cfg.DatabaseURL != "",
	)

	ctx := context.Background()

	// The audit log is optional; without DATABASE_URL deletes are only logged.
	var db *database.DB
	var audit service.AuditRecorder
	var auditLog api.AuditLog
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations complete")
		repo := database.NewAuditRepository(db)
		audit, auditLog = repo, repo
	}

	// Initialize storage
	store := storage.NewFileSystemStore(cfg.RootDir, storage.NewProtectedSet(cfg.ProtectedFiles...))
	if err := store.EnsureDir(); err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Info("shared directory ready", "path", store.Root())

	renderer, err := render.New(cfg.ListingTheme)
	if err != nil {
		slog.Error("invalid listing theme", "error", err)
		os.Exit(1)
	}

	// Initialize services
	uploads := service.NewUploadService(store, cfg)
	approver := service.NewConsoleApprover(os.Stdin, os.Stdout)
	deletes := service.NewDeleteService(store, service.NewPendingStore(), approver, audit)

	// Start cleanup service
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	cleanup := storage.NewCleanupService(store.Root(), cfg.TempFileMaxAge, cfg.CleanupInterval)
	cleanup.Start(cleanupCtx)

	// Setup HTTP router
	handler := api.NewHandler(uploads, deletes, store, renderer, db, auditLog)
	e := api.SetupRouter(handler)

	// Request contexts derive from this one so shutdown releases handlers
	// still waiting on the operator.
	requestCtx, cancelRequests := context.WithCancel(context.Background())
	e.Server.BaseContext = func(net.Listener) context.Context { return requestCtx }

	addr := fmt.Sprintf(":%s", cfg.Port)
	printBanner(os.Stdout, lanIP(), cfg.Port, store.Root())

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig, "pending_deletes", deletes.Pending())
	cancelRequests()

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop cleanup service
	cleanupCancel()
	cleanup.Wait()

	slog.Info("server exited cleanly")
}
