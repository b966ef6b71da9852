package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/parshv1234/ChemicalVisualizer/internal/application"
	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/config"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/logging"
	"github.com/parshv1234/ChemicalVisualizer/internal/report"
	"github.com/parshv1234/ChemicalVisualizer/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database_backend", cfg.Database.Backend,
		"files_backend", cfg.Files.Backend,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"anonymous_upload", cfg.Security.AllowAnonymousUpload,
	)

	ctx := context.Background()
	backends, err := application.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	core.UploadTimeout = cfg.Upload.Timeout

	tokens := auth.NewTokenIssuer([]byte(cfg.Security.TokenSecret), cfg.Security.TokenIssuer, cfg.Security.TokenTTL)
	authService := auth.NewService(backends.Users, auth.NewHasher(cfg.Security.BcryptCost), tokens)
	datasets := core.NewService(backends.Datasets, backends.Files, report.NewRenderer())

	server := web.NewServer(cfg, datasets, authService)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		backends.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
