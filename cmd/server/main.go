package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bike-dashboard/internal/config"
	"bike-dashboard/internal/handlers"
	"bike-dashboard/internal/models"
	"bike-dashboard/internal/repository"
	"bike-dashboard/internal/services"
	"bike-dashboard/pkg/database"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("bike-dashboard-api", version, cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[STARTUP] Starting bike rental dashboard API server", logging.Fields{
		"version":        version,
		"server_host":    cfg.Server.Host,
		"server_port":    cfg.Server.Port,
		"dataset_source": cfg.Dataset.Source,
	})

	metricsCollector := metrics.NewCollector("bike_dashboard")
	clock := clockwork.NewRealClock()

	dataset, err := loadDataset(ctx, cfg, logger, metricsCollector, clock)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load dataset", logging.Fields{
			"dataset_source": cfg.Dataset.Source,
		}, err)
	}

	details := services.NewDetailService(dataset, logger, metricsCollector)
	dashboard := services.NewDashboardService(dataset, details, logger, metricsCollector)

	defaults := services.DefaultControlState()
	defaults.SeasonYear = cfg.Dataset.SeasonYear

	dashboardHandler := handlers.NewDashboardHandler(dashboard, details, defaults, logger, metricsCollector, clock)
	router := handlers.NewRouter(dashboardHandler, logger, promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
			"records": dataset.Len(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "[SHUTDOWN] Shutting down server...", logging.Fields{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "[SERVER_ERROR] Server stopped with error", logging.Fields{}, err)
		os.Exit(1)
	}

	logger.Info(context.Background(), "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

// loadDataset builds the immutable record set once, from CSV or PostgreSQL
func loadDataset(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) (*models.Dataset, error) {
	if cfg.Dataset.Source == config.SourceCSV {
		ingestion := services.NewIngestionService(nil, logger, metricsCollector, clock)
		dataset, _, err := ingestion.LoadCSV(ctx, cfg.Dataset.Path)
		return dataset, err
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database.Postgres(), logger, metricsCollector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewRentalRepository(db, logger, metricsCollector)
	ingestion := services.NewIngestionService(repo, logger, metricsCollector, clock)
	if err := ingestion.CheckRepository(ctx); err != nil {
		return nil, err
	}
	return ingestion.LoadFromRepository(ctx)
}
