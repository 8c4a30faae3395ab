package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wilddough/internal/server/api"
	"wilddough/internal/server/auth"
	"wilddough/internal/server/cache"
	"wilddough/internal/server/config"
	"wilddough/internal/server/gallery"
	"wilddough/internal/server/mailer"
	"wilddough/internal/server/session"
	"wilddough/internal/server/storage"
	"wilddough/internal/server/store"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"upload_dir", cfg.UploadDir,
		"max_upload_size", cfg.MaxUploadSize,
		"cache_ttl", cfg.CacheTTL,
		"session_ttl", cfg.SessionTTL,
	)

	if cfg.AdminPasswordHash == "" {
		slog.Error("ADMIN_PASSWORD_HASH must be set (bcrypt hash of the admin password)")
		os.Exit(1)
	}

	// Initialize image storage
	files := storage.NewFileSystemStore(cfg.UploadDir)
	if err := files.EnsureDir(); err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}
	slog.Info("upload storage initialized", "path", cfg.UploadDir)

	// Restore persisted state
	st := store.New(cfg.SnapshotPath())
	st.Load()

	// Services
	galleryCache := cache.New[[]store.Image](cfg.CachePath(), cfg.CacheTTL)
	sessions := session.NewManager(cfg.SessionTTL)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	gal := gallery.NewService(st, galleryCache, files, cfg)
	mail := mailer.LogMailer{}

	// Start expiry sweeper for the cache and admin sessions
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	sweeper := session.NewSweeper(cfg.SweepInterval, galleryCache.Sweep, sessions.Sweep)
	sweeper.Start(sweepCtx)

	// Setup HTTP router
	handler := api.NewHandler(gal, st, sessions, tokens, mail, cfg)
	e := api.SetupRouter(handler, tokens, sessions, cfg)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr, "base_url", cfg.BaseURL)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop the sweeper
	sweepCancel()
	sweeper.Wait()

	// Final flush of the snapshot
	if err := st.Flush(); err != nil {
		slog.Error("final snapshot flush failed", "error", err)
	}

	slog.Info("server exited cleanly")
}
