package repository

import (
	"context"
	"fmt"
	"time"

	"bike-dashboard/internal/models"
	"bike-dashboard/pkg/database"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// RentalRepository stores the canonical record set in PostgreSQL.
// Insertion order is preserved through the serial id so a dataset read back
// keeps the source row order.
type RentalRepository interface {
	// ReplaceAll swaps the stored record set for records in one transaction
	ReplaceAll(ctx context.Context, records []models.RentalRecord, batchSize int) error
	// ListRecords returns every stored record in insertion order
	ListRecords(ctx context.Context) ([]models.RentalRecord, error)
	CountRecords(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
}

const insertRentalQuery = `
	INSERT INTO bike_rentals (
		rental_date, bike_count, hour,
		temperature_celsius, wind_speed_ms, solar_radiation_mj,
		season, holiday, functioning_day,
		month, day, year, week_day
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

const listRentalsQuery = `
	SELECT rental_date, bike_count, hour,
	       temperature_celsius, wind_speed_ms, solar_radiation_mj,
	       season, holiday, functioning_day,
	       month, day, year, week_day
	FROM bike_rentals
	ORDER BY id
`

type rentalRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRentalRepository creates a new rental repository
func NewRentalRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) RentalRepository {
	return &rentalRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ReplaceAll truncates the table and inserts records in batches within one transaction
func (r *rentalRepository) ReplaceAll(ctx context.Context, records []models.RentalRecord, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(records)
	}

	timer := time.Now()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE bike_rentals RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to truncate rentals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRentalQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		for _, rec := range records[start:end] {
			_, err := stmt.ExecContext(ctx,
				rec.Date,
				rec.BikeCount,
				rec.Hour,
				rec.Temperature,
				rec.Wind,
				rec.SolarRadiation,
				rec.Seasons,
				rec.Holiday,
				rec.FunctioningDay,
				rec.Month,
				rec.Day,
				rec.Year,
				rec.WeekDay,
			)
			if err != nil {
				r.metrics.RecordDBError("insert_error")
				return fmt.Errorf("failed to insert rental record: %w", err)
			}
		}

		r.metrics.IngestionBatchSize.Observe(float64(end - start))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch inserted", logging.Fields{
			"batch_start": start,
			"count":       end - start,
		})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(records)))
	r.logger.Info(ctx, "[REPO_REPLACE_ALL] Rental records replaced", logging.Fields{
		"count":       len(records),
		"duration_ms": time.Since(timer).Milliseconds(),
	})

	return nil
}

// ListRecords returns every stored record ordered by insertion
func (r *rentalRepository) ListRecords(ctx context.Context) ([]models.RentalRecord, error) {
	var records []models.RentalRecord
	if err := r.db.SelectContext(ctx, "list_rentals", &records, listRentalsQuery); err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}

	// DATE columns come back in the session time zone; keep calendar dates in UTC.
	for i := range records {
		d := records[i].Date
		records[i].Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	return records, nil
}

// CountRecords returns the number of stored records
func (r *rentalRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, "count_rentals", &count, "SELECT COUNT(*) FROM bike_rentals"); err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}

// HealthCheck performs a repository health check
func (r *rentalRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
