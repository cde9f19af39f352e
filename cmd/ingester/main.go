package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"bike-dashboard/internal/config"
	"bike-dashboard/internal/repository"
	"bike-dashboard/internal/services"
	"bike-dashboard/pkg/database"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the rental CSV (default: DATASET_PATH)")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert per batch")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *csvPath == "" {
		*csvPath = cfg.Dataset.Path
	}

	logger := logging.NewStructuredLogger("bike-dashboard-ingester", "1.0.0", cfg.LogLevel())

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting rental data ingestion", logging.Fields{
		"version":    "1.0.0",
		"csv":        *csvPath,
		"batch_size": *batchSize,
	})

	metricsCollector := metrics.NewCollector("bike_dashboard_ingester")

	db, err := database.NewPostgresDB(ctx, cfg.Database.Postgres(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	repo := repository.NewRentalRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(repo, logger, metricsCollector, clockwork.NewRealClock())

	if err := ingestionService.CheckRepository(ctx); err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Database not ready", logging.Fields{}, err)
	}

	dataset, result, err := ingestionService.LoadCSV(ctx, *csvPath)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Failed to load CSV", logging.Fields{
			"csv": *csvPath,
		}, err)
	}

	if err := ingestionService.StoreDataset(ctx, dataset, *batchSize); err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Failed to store records", logging.Fields{}, err)
	}

	stored, err := repo.CountRecords(ctx)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Failed to count stored records", logging.Fields{}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Source:             %s\n", result.Source)
	fmt.Printf("Rows Read:          %d\n", result.TotalRows)
	fmt.Printf("Rows Kept:          %d\n", result.KeptRows)
	fmt.Printf("Non-functioning:    %d\n", result.DroppedRows)
	fmt.Printf("Rows Stored:        %d\n", stored)
	fmt.Printf("Load Duration:      %v\n", result.Duration)

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"rows_read":    result.TotalRows,
		"rows_kept":    result.KeptRows,
		"rows_dropped": result.DroppedRows,
		"rows_stored":  stored,
	})
}
