// Command healthtrack serves the health tracking API and runs the
// alerting engine's reminder scheduler.
//
// Usage:
//
//	healthtrack serve
//	healthtrack migrate
//	healthtrack tick --at 2025-03-10T08:00:00-06:00
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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/healthtrack/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/tracer"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthtrack",
		Short:         "Health tracking API and alerting engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), tickCmd())
	return root
}

// bootstrap loads config and builds the logger every subcommand needs.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedulerDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		go func() {
			defer close(schedulerDone)
			a.engine.Scheduler().Start(ctx)
		}()
	} else {
		close(schedulerDone)
		log.Info("reminder scheduler disabled")
	}

	srv := &http.Server{
		Addr: cfg.Server.Address(),
		Handler: v1.NewRouter(v1.RouterDeps{
			Config:    cfg,
			Handler:   a.handler(),
			Collector: a.collector,
			Gatherer:  a.registry,
			Log:       log,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-serverErr:
		if runErr != nil {
			log.Error("http server failed", zap.Error(runErr))
		}
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	<-schedulerDone
	if err := a.close(shutdownCtx); err != nil {
		log.Error("closing resources", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown", zap.Error(err))
	}

	log.Info("shutdown complete")
	return runErr
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create schemas, tables and indexes",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Store.Driver != "postgres" {
				return fmt.Errorf("migrate requires STORE_DRIVER=postgres, got %q", cfg.Store.Driver)
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db, log); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			log.Info("migration complete")
			return nil
		},
	}
}

func tickCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run a single reminder pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Validate the flag before touching the store.
			if _, err := parseTickTime(at, time.Time{}); err != nil {
				return err
			}

			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			now, err := parseTickTime(at, a.engine.Now())
			if err != nil {
				return err
			}

			start := time.Now()
			result := a.engine.Tick(cmd.Context(), now)
			log.Info("reminder tick finished",
				zap.Time("at", now),
				zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
				zap.String("summary", result.Summary()),
			)
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate reminders as of this RFC3339 instant (default now)")
	return cmd
}

// parseTickTime returns fallback for an empty --at value.
func parseTickTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --at: %w", err)
	}
	return t, nil
}
