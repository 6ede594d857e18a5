// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pagecraft/internal/database"
	"pagecraft/internal/handlers"
	"pagecraft/internal/middleware"
	"pagecraft/internal/router"
	"pagecraft/internal/scheduler"
)

var (
	serveMigrate   bool
	serveScheduler bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the JSON API. Pending migrations are applied first unless
--migrate=false, and the scheduled-publish job runs in-process unless
--scheduler=false.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations on startup")
	serveCmd.Flags().BoolVar(&serveScheduler, "scheduler", true, "run the scheduled-publish job")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if serveMigrate {
		if err := database.Migrate(eng.db); err != nil {
			return err
		}
		// Seed development data (no-op if data already exists).
		if cfg.IsDev() {
			if err := database.Seed(eng.db); err != nil {
				return err
			}
		}
	}

	if serveScheduler {
		sched := scheduler.New(eng.content, cfg.SchedulerSpec)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	var limiter *middleware.RateLimiter
	if cfg.RegenRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RegenRateLimit, time.Minute)
		defer limiter.Stop()
	}

	api := handlers.NewAPI(eng.content, eng.pipeline, eng.queue, eng.pageCache, eng.generators)

	// WriteTimeout must cover a synchronous regeneration waiting on the
	// provider.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, limiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
