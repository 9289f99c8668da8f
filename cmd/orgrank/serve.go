package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/orgrank/internal/transport/chi"
	"github.com/kailas-cloud/orgrank/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the index and start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting orgrank",
		zap.String("version", version.String()),
		zap.String("env", envName),
		zap.String("index", cfg.Index.Backend),
		zap.String("embedding", cfg.Embedding.Provider),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	server := chiTransport.NewServer(a.search, a.catalog, a.health, a.limits, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("indexed", a.index.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
