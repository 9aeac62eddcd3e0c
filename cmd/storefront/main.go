// Package main implements the storefront HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/migrations"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, sets up the database connection, and starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	if err := applyMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database schema is up to date")

	publisher, closePublisher, err := setupPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			logger.Error("error creating tracer provider", slog.Any("error", err))
			return err
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
	}

	deps := app.SetupDependencies(dbPool, publisher, logger, cfg)
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// applyMigrations brings the database schema up to date from the embedded migration files.
func applyMigrations(databaseURL string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// setupPublisher connects to NATS JetStream when messaging is enabled and
// falls back to a no-op publisher otherwise.
func setupPublisher(cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, events will not be published")
		return messaging.NopPublisher{}, func() {}, nil
	}
	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS connection: %w", err)
	}
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	logger.Info("Connected to NATS", slog.String("url", cfg.Nats.Url))
	return nats.NewNatsPublisher(js), natsConn.Close, nil
}
