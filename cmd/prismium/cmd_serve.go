package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/luizguil99/prismium/src/config"
	"github.com/luizguil99/prismium/src/server"
	"github.com/luizguil99/prismium/src/storage"
)

// ServeCmd runs the history API server
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("configuration error: server.jwt_secret is required (set %sJWT_SECRET)", config.EnvPrefix)
	}

	logger := createServerLogger(cli.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()

	api := server.New(db, cfg, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Flush debounced writes before the listener goes away.
	if err := api.Close(ctx); err != nil {
		logger.Error("flush on shutdown failed", "error", err)
	}
	return httpServer.Shutdown(ctx)
}
