package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/encoding/charmap"

	"bike-dashboard/internal/models"
	"bike-dashboard/internal/repository"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// Required CSV headers of the Seoul bike sharing export
const (
	ColumnDate           = "Date"
	ColumnBikeCount      = "Rented Bike Count"
	ColumnHour           = "Hour"
	ColumnTemperature    = "Temperature(°C)"
	ColumnWind           = "Wind speed (m/s)"
	ColumnSolarRadiation = "Solar Radiation (MJ/m2)"
	ColumnSeasons        = "Seasons"
	ColumnHoliday        = "Holiday"
	ColumnFunctioningDay = "Functioning Day"
)

var requiredColumns = []string{
	ColumnDate,
	ColumnBikeCount,
	ColumnHour,
	ColumnTemperature,
	ColumnWind,
	ColumnSolarRadiation,
	ColumnSeasons,
	ColumnHoliday,
	ColumnFunctioningDay,
}

// IngestionService loads and normalizes rental records and stores them
type IngestionService struct {
	repo    repository.RentalRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	clock   clockwork.Clock
}

// LoadResult contains load statistics
type LoadResult struct {
	Source      string
	TotalRows   int
	KeptRows    int
	DroppedRows int
	Duration    time.Duration
}

// NewIngestionService creates a new ingestion service.
// repo may be nil when records are only loaded from CSV.
func NewIngestionService(repo repository.RentalRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) *IngestionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		clock:   clock,
	}
}

// LoadCSV reads and normalizes the rental CSV at path
func (s *IngestionService) LoadCSV(ctx context.Context, path string) (*models.Dataset, *LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		s.metrics.RecordLoadError("io_error")
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return s.LoadReader(ctx, file, path)
}

// LoadReader reads ISO-8859-1 encoded CSV from r. Rows from non-functioning
// days are dropped; the remaining rows keep their source order.
func (s *IngestionService) LoadReader(ctx context.Context, r io.Reader, source string) (*models.Dataset, *LoadResult, error) {
	startTime := s.clock.Now()

	s.logger.Info(ctx, "[LOAD_START] Loading rental dataset", logging.Fields{
		"source": source,
		"stage":  "INITIALIZATION",
	})

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		s.metrics.RecordLoadError("io_error")
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		s.metrics.RecordLoadError("schema_error")
		s.logger.Error(ctx, "[LOAD_SCHEMA_ERROR] Required column missing", logging.Fields{
			"source": source,
			"header": strings.Join(header, ","),
		}, err)
		return nil, nil, err
	}

	result := &LoadResult{Source: source}
	records := make([]models.RentalRecord, 0, 8760)

	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.metrics.RecordLoadError("io_error")
			return nil, nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		result.TotalRows++

		raw := models.RawRentalRecord{
			Row:            row,
			Date:           fields[columns[ColumnDate]],
			BikeCount:      fields[columns[ColumnBikeCount]],
			Hour:           fields[columns[ColumnHour]],
			Temperature:    fields[columns[ColumnTemperature]],
			Wind:           fields[columns[ColumnWind]],
			SolarRadiation: fields[columns[ColumnSolarRadiation]],
			Seasons:        fields[columns[ColumnSeasons]],
			Holiday:        fields[columns[ColumnHoliday]],
			FunctioningDay: fields[columns[ColumnFunctioningDay]],
		}

		record, err := raw.ToRecord()
		if err != nil {
			s.recordRowError(ctx, source, row, err)
			return nil, nil, fmt.Errorf("failed to normalize dataset: %w", err)
		}

		if record.FunctioningDay != models.FunctioningYes {
			result.DroppedRows++
			continue
		}
		records = append(records, *record)
	}

	result.KeptRows = len(records)
	result.Duration = s.clock.Since(startTime)

	s.metrics.DatasetRowsDropped.WithLabelValues("not_functioning").Add(float64(result.DroppedRows))
	s.metrics.DatasetRecords.Set(float64(result.KeptRows))
	s.metrics.DatasetLoadDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[LOAD_COMPLETE] Rental dataset loaded", logging.Fields{
		"source":       source,
		"total_rows":   result.TotalRows,
		"kept_rows":    result.KeptRows,
		"dropped_rows": result.DroppedRows,
		"duration_ms":  result.Duration.Milliseconds(),
		"stage":        "COMPLETE",
	})

	return models.NewDataset(records, source, s.clock.Now().UTC()), result, nil
}

// LoadFromRepository reads the stored record set back in insertion order
func (s *IngestionService) LoadFromRepository(ctx context.Context) (*models.Dataset, error) {
	if s.repo == nil {
		return nil, errors.New("no rental repository configured")
	}

	timer := s.metrics.NewTimer(s.metrics.DatasetLoadDuration)
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		s.metrics.RecordLoadError("db_error")
		return nil, fmt.Errorf("failed to load dataset from repository: %w", err)
	}
	duration := timer.ObserveDuration()

	s.metrics.DatasetRecords.Set(float64(len(records)))
	s.logger.Info(ctx, "[LOAD_COMPLETE] Rental dataset loaded from database", logging.Fields{
		"source":      "postgres",
		"kept_rows":   len(records),
		"duration_ms": duration.Milliseconds(),
	})

	return models.NewDataset(records, "postgres", s.clock.Now().UTC()), nil
}

// CheckRepository pings the backing store so callers fail before any work is done
func (s *IngestionService) CheckRepository(ctx context.Context) error {
	if s.repo == nil {
		return errors.New("no rental repository configured")
	}
	if err := s.repo.HealthCheck(ctx); err != nil {
		s.metrics.RecordLoadError("db_unavailable")
		s.logger.Error(ctx, "[DB_UNAVAILABLE] Rental repository health check failed", logging.Fields{}, err)
		return fmt.Errorf("rental repository unavailable: %w", err)
	}
	return nil
}

// StoreDataset replaces the stored record set with the records of ds
func (s *IngestionService) StoreDataset(ctx context.Context, ds *models.Dataset, batchSize int) error {
	if s.repo == nil {
		return errors.New("no rental repository configured")
	}

	log := s.logger.WithFields(logging.Fields{"source": ds.Source()})
	log.Info(ctx, "[INGEST_START] Storing rental dataset", logging.Fields{
		"records":    ds.Len(),
		"batch_size": batchSize,
	})

	if err := s.repo.ReplaceAll(ctx, ds.Records(), batchSize); err != nil {
		log.Error(ctx, "[INGEST_ERROR] Failed to store rental dataset", nil, err)
		return fmt.Errorf("failed to store dataset: %w", err)
	}

	log.Info(ctx, "[INGEST_COMPLETE] Rental dataset stored", nil)
	return nil
}

func (s *IngestionService) recordRowError(ctx context.Context, source string, row int, err error) {
	var parseErr *models.ParseError
	errorType := "schema_error"
	if errors.As(err, &parseErr) {
		errorType = "parse_error"
	}
	s.metrics.RecordLoadError(errorType)
	s.logger.Error(ctx, "[LOAD_ROW_ERROR] Row rejected", logging.Fields{
		"source":     source,
		"row":        row,
		"error_type": errorType,
	}, err)
}

// mapColumns locates every required column by trimmed header name
func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	columns := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		i, ok := index[name]
		if !ok {
			return nil, &models.SchemaError{Field: name, Message: "missing required column"}
		}
		columns[name] = i
	}
	return columns, nil
}
