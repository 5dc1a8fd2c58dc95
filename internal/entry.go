// Package internal provides the main application initialization and runtime logic.
package internal

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

	"golang.org/x/sync/errgroup"

	"github.com/starford/inkwell/internal/api"
	"github.com/starford/inkwell/internal/logbuf"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/vault"
	"github.com/starford/inkwell/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger with an in-memory tail for the /api/logs
	// endpoint.
	buf := logbuf.NewHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	logger := slog.New(buf)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("static_base_url", cfg.Vault.StaticBaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	v, err := vault.New(cfg.Vault.Path, cfg.Vault.StaticBaseURL, logger)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	if err := v.EnsureTemplates(); err != nil {
		logger.Warn("template seeding failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(logger)
	fsWatcher := watcher.New(v.Root(), broker, logger)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: api.NewServerMux(v, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, buf),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := broker.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := fsWatcher.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
