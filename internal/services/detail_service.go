package services

import (
	"context"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/models"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// DetailView is the detail panel: either empty or the first record of a date
type DetailView struct {
	Found bool `json:"found"`
	*models.DetailRecord
}

// DetailService answers point lookups for the detail panel
type DetailService struct {
	dataset *models.Dataset
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDetailService creates a new detail service
func NewDetailService(dataset *models.Dataset, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DetailService {
	return &DetailService{
		dataset: dataset,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Detail looks up the first record on date (YYYY-MM-DD).
// A malformed date returns *models.ParseError.
func (s *DetailService) Detail(ctx context.Context, date string) (DetailView, error) {
	calendarDate, err := models.ParseCalendarDate(date)
	if err != nil {
		s.metrics.RecordLookup("invalid")
		return DetailView{}, err
	}

	detail, ok := analytics.Lookup(s.dataset, calendarDate)
	if !ok {
		s.metrics.RecordLookup("miss")
		s.logger.Debug(ctx, "[DETAIL_MISS] No record for date", logging.Fields{
			"date": calendarDate.String(),
		})
		return DetailView{}, nil
	}

	s.metrics.RecordLookup("hit")
	return DetailView{Found: true, DetailRecord: &detail}, nil
}

// DetailOrEmpty is Detail with malformed dates mapped to the empty view
func (s *DetailService) DetailOrEmpty(ctx context.Context, date string) DetailView {
	view, err := s.Detail(ctx, date)
	if err != nil {
		s.logger.Warn(ctx, "[DETAIL_INVALID_DATE] Malformed date, showing empty detail", logging.Fields{
			"date":  date,
			"error": err.Error(),
		})
		return DetailView{}
	}
	return view
}
