package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/comp-calculator/api"
	"github.com/warp/comp-calculator/config"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
	"github.com/warp/comp-calculator/store/memory"
	"github.com/warp/comp-calculator/store/postgres"
	"github.com/warp/comp-calculator/store/sqlite"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Start the HTTP API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// backend is one store serving both sessions and rosters.
type backend interface {
	session.BlobStore
	roster.Repository
}

// openStore connects the configured driver. The returned close func is
// never nil.
func openStore(ctx context.Context, cfg config.StoreConfig) (backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), func() error { return nil }, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, s.Close, nil
	default:
		s, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log := opts.cfg, opts.log

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	handler := api.NewHandler(store, store, cfg.Batch.Workers, log)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("store", cfg.Store.Driver).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
