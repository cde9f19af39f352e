package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/charts"
	"bike-dashboard/internal/models"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// DefaultDetailDate is the date initially shown in the detail panel
const DefaultDetailDate = "2017-11-01"

// DefaultSeasonYear is the year the seasons chart covers
const DefaultSeasonYear = 2018

// ControlState is one combination of dashboard control values
type ControlState struct {
	SeasonYear   int                       `json:"season_year"`
	Band         analytics.TemperatureBand `json:"temperature"`
	Weekdays     []string                  `json:"weekdays"`
	HolidayFlags []string                  `json:"holiday_flags"`
	Date         string                    `json:"date"`
}

// DefaultControlState returns the controls as first shown
func DefaultControlState() ControlState {
	return ControlState{
		SeasonYear:   DefaultSeasonYear,
		Band:         analytics.DefaultTemperatureBand,
		Weekdays:     append([]string(nil), models.WeekDays...),
		HolidayFlags: append([]string(nil), models.HolidayFlags...),
		Date:         DefaultDetailDate,
	}
}

// DashboardView is every chart plus the detail panel for one control state
type DashboardView struct {
	Controls      ControlState `json:"controls"`
	Seasons       charts.Chart `json:"seasons"`
	Monthly       charts.Chart `json:"monthly"`
	HourlyWeekday charts.Chart `json:"hourly_weekday"`
	HourlyHoliday charts.Chart `json:"hourly_holiday"`
	Detail        DetailView   `json:"detail"`
}

// UnknownChartError reports a chart name that is not served
type UnknownChartError struct {
	Name string
}

func (e *UnknownChartError) Error() string {
	return fmt.Sprintf("unknown chart %q", e.Name)
}

// DashboardService computes chart tables over the loaded dataset
type DashboardService struct {
	dataset *models.Dataset
	details *DetailService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(dataset *models.Dataset, details *DetailService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	return &DashboardService{
		dataset: dataset,
		details: details,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SeasonsChart builds the seasons pie for year
func (s *DashboardService) SeasonsChart(ctx context.Context, year int) charts.Chart {
	start := time.Now()
	rows := analytics.SeasonalTotals(s.dataset, year)
	s.observe(ctx, charts.SeasonsChart, start, len(rows), logging.Fields{"year": year})
	return charts.SeasonsPie(rows)
}

// MonthlyChart builds the monthly average bar chart
func (s *DashboardService) MonthlyChart(ctx context.Context) charts.Chart {
	start := time.Now()
	rows := analytics.MonthlyAverage(s.dataset)
	s.observe(ctx, charts.MonthlyChart, start, len(rows), nil)
	return charts.MonthlyBar(rows)
}

// HourlyWeekdayChart builds the hour-by-weekday line chart
func (s *DashboardService) HourlyWeekdayChart(ctx context.Context, band analytics.TemperatureBand, weekdays []string) charts.Chart {
	start := time.Now()
	rows := analytics.HourlyByWeekday(s.dataset, band, weekdays)
	s.observe(ctx, charts.HourlyWeekdayChart, start, len(rows), logging.Fields{
		"temp_min": band.Min,
		"temp_max": band.Max,
		"weekdays": weekdays,
	})
	return charts.WeekdayLine(rows)
}

// HourlyHolidayChart builds the hour-by-holiday grouped bar chart
func (s *DashboardService) HourlyHolidayChart(ctx context.Context, band analytics.TemperatureBand, flags []string) charts.Chart {
	start := time.Now()
	rows := analytics.HourlyByHoliday(s.dataset, band, flags)
	s.observe(ctx, charts.HourlyHolidayChart, start, len(rows), logging.Fields{
		"temp_min": band.Min,
		"temp_max": band.Max,
		"holiday":  flags,
	})
	return charts.HolidayGroupedBar(rows)
}

// Chart builds the chart named name from the control state
func (s *DashboardService) Chart(ctx context.Context, name string, state ControlState) (charts.Chart, error) {
	switch name {
	case charts.SeasonsChart:
		return s.SeasonsChart(ctx, state.SeasonYear), nil
	case charts.MonthlyChart:
		return s.MonthlyChart(ctx), nil
	case charts.HourlyWeekdayChart:
		return s.HourlyWeekdayChart(ctx, state.Band, state.Weekdays), nil
	case charts.HourlyHolidayChart:
		return s.HourlyHolidayChart(ctx, state.Band, state.HolidayFlags), nil
	default:
		return charts.Chart{}, &UnknownChartError{Name: name}
	}
}

// Dashboard recomputes every chart and the detail panel for state.
// Charts are built concurrently over the shared read-only dataset. Chart
// builders cannot fail, so the group only joins the workers and Wait is
// always nil.
func (s *DashboardService) Dashboard(ctx context.Context, state ControlState) DashboardView {
	view := DashboardView{Controls: state}

	var g errgroup.Group
	g.Go(func() error {
		view.Seasons = s.SeasonsChart(ctx, state.SeasonYear)
		return nil
	})
	g.Go(func() error {
		view.Monthly = s.MonthlyChart(ctx)
		return nil
	})
	g.Go(func() error {
		view.HourlyWeekday = s.HourlyWeekdayChart(ctx, state.Band, state.Weekdays)
		return nil
	})
	g.Go(func() error {
		view.HourlyHoliday = s.HourlyHolidayChart(ctx, state.Band, state.HolidayFlags)
		return nil
	})
	_ = g.Wait() // join only

	view.Detail = s.details.DetailOrEmpty(ctx, state.Date)
	return view
}

// Summary describes the loaded dataset
func (s *DashboardService) Summary() models.DatasetSummary {
	return s.dataset.Summary()
}

func (s *DashboardService) observe(ctx context.Context, chart string, start time.Time, rows int, fields logging.Fields) {
	duration := time.Since(start)
	s.metrics.RecordChart(chart, duration, rows)

	logFields := logging.Fields{
		"chart":       chart,
		"rows":        rows,
		"duration_ms": duration.Milliseconds(),
	}
	for k, v := range fields {
		logFields[k] = v
	}
	s.logger.Debug(ctx, "[CHART_COMPUTED] Chart table computed", logFields)
}
