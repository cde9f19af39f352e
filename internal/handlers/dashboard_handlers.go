package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/charts"
	"bike-dashboard/internal/models"
	"bike-dashboard/internal/services"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// DashboardHandler serves chart tables and the detail panel over HTTP
type DashboardHandler struct {
	dashboard *services.DashboardService
	details   *services.DetailService
	defaults  services.ControlState
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
	clock     clockwork.Clock
}

// NewDashboardHandler creates a new dashboard handler.
// defaults supplies control values for omitted query parameters.
func NewDashboardHandler(
	dashboard *services.DashboardService,
	details *services.DetailService,
	defaults services.ControlState,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	clock clockwork.Clock,
) *DashboardHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DashboardHandler{
		dashboard: dashboard,
		details:   details,
		defaults:  defaults,
		logger:    logger,
		metrics:   metricsCollector,
		clock:     clock,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GetSeasons handles GET /api/charts/seasons
func (h *DashboardHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/charts/seasons", time.Now())

	state, err := h.parseControls(r.URL.Query())
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	chart := h.dashboard.SeasonsChart(r.Context(), state.SeasonYear)
	h.metrics.RecordAPIRequest("/api/charts/seasons", "GET", "200")
	h.sendJSON(w, chart, http.StatusOK)
}

// GetMonthly handles GET /api/charts/monthly
func (h *DashboardHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/charts/monthly", time.Now())

	chart := h.dashboard.MonthlyChart(r.Context())
	h.metrics.RecordAPIRequest("/api/charts/monthly", "GET", "200")
	h.sendJSON(w, chart, http.StatusOK)
}

// GetHourlyWeekday handles GET /api/charts/hourly-weekday
func (h *DashboardHandler) GetHourlyWeekday(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/charts/hourly-weekday", time.Now())

	state, err := h.parseControls(r.URL.Query())
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	chart := h.dashboard.HourlyWeekdayChart(r.Context(), state.Band, state.Weekdays)
	h.metrics.RecordAPIRequest("/api/charts/hourly-weekday", "GET", "200")
	h.sendJSON(w, chart, http.StatusOK)
}

// GetHourlyHoliday handles GET /api/charts/hourly-holiday
func (h *DashboardHandler) GetHourlyHoliday(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/charts/hourly-holiday", time.Now())

	state, err := h.parseControls(r.URL.Query())
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	chart := h.dashboard.HourlyHolidayChart(r.Context(), state.Band, state.HolidayFlags)
	h.metrics.RecordAPIRequest("/api/charts/hourly-holiday", "GET", "200")
	h.sendJSON(w, chart, http.StatusOK)
}

// GetChartSVG handles GET /api/charts/{name}.svg
func (h *DashboardHandler) GetChartSVG(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/charts/{name}.svg", time.Now())
	ctx := r.Context()

	state, err := h.parseControls(r.URL.Query())
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	name := mux.Vars(r)["name"]
	chart, err := h.dashboard.Chart(ctx, name, state)
	if err != nil {
		var unknown *services.UnknownChartError
		if errors.As(err, &unknown) {
			h.sendError(w, r, err.Error(), http.StatusNotFound)
			return
		}
		h.sendError(w, r, "failed to build chart", http.StatusInternalServerError)
		return
	}

	if chart.IsEmpty() {
		h.metrics.RecordAPIRequest("/api/charts/{name}.svg", "GET", "204")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderSVG(chart, &buf); err != nil {
		if errors.Is(err, charts.ErrEmptyChart) {
			h.metrics.RecordAPIRequest("/api/charts/{name}.svg", "GET", "204")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.Error(ctx, "[API_RENDER_ERROR] Failed to render chart", logging.Fields{
			"chart": name,
		}, err)
		h.metrics.RecordAPIError("render_error", "/api/charts/{name}.svg")
		h.sendError(w, r, "failed to render chart", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/charts/{name}.svg", "GET", "200")
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetDetails handles GET /api/details. Malformed dates yield the empty panel.
func (h *DashboardHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/details", time.Now())

	date := h.defaults.Date
	if q := r.URL.Query(); q.Has("date") {
		date = q.Get("date")
	}

	view := h.details.DetailOrEmpty(r.Context(), date)
	h.metrics.RecordAPIRequest("/api/details", "GET", "200")
	h.sendJSON(w, view, http.StatusOK)
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/dashboard", time.Now())

	state, err := h.parseControls(r.URL.Query())
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	view := h.dashboard.Dashboard(r.Context(), state)
	h.metrics.RecordAPIRequest("/api/dashboard", "GET", "200")
	h.sendJSON(w, view, http.StatusOK)
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	defer h.observeDuration("/api/dataset", time.Now())

	h.metrics.RecordAPIRequest("/api/dataset", "GET", "200")
	h.sendJSON(w, h.dashboard.Summary(), http.StatusOK)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
		"records":   h.dashboard.Summary().Records,
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// parseControls reads control values from the query, falling back to defaults.
// A present but empty weekday or holiday parameter selects nothing.
func (h *DashboardHandler) parseControls(q url.Values) (services.ControlState, error) {
	state := h.defaults
	state.Weekdays = append([]string(nil), h.defaults.Weekdays...)
	state.HolidayFlags = append([]string(nil), h.defaults.HolidayFlags...)

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return state, fmt.Errorf("invalid year %q, expected integer", v)
		}
		state.SeasonYear = year
	}

	band, err := parseBand(q, h.defaults.Band)
	if err != nil {
		return state, err
	}
	state.Band = band

	if q.Has("weekday") {
		days, err := selection(q["weekday"], models.IsWeekDay, "weekday")
		if err != nil {
			return state, err
		}
		state.Weekdays = days
	}

	if q.Has("holiday") {
		flags, err := selection(q["holiday"], models.IsHolidayFlag, "holiday")
		if err != nil {
			return state, err
		}
		state.HolidayFlags = flags
	}

	if q.Has("date") {
		state.Date = q.Get("date")
	}

	return state, nil
}

func parseBand(q url.Values, band analytics.TemperatureBand) (analytics.TemperatureBand, error) {
	if v := q.Get("temp_min"); v != "" {
		lo, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return band, fmt.Errorf("invalid temp_min %q, expected number", v)
		}
		band.Min = lo
	}
	if v := q.Get("temp_max"); v != "" {
		hi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return band, fmt.Errorf("invalid temp_max %q, expected number", v)
		}
		band.Max = hi
	}
	return band, nil
}

func selection(values []string, valid func(string) bool, param string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if !valid(v) {
			return nil, fmt.Errorf("invalid %s %q", param, v)
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *DashboardHandler) observeDuration(endpoint string, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))
	h.logger.Warn(r.Context(), "[API_REQUEST_REJECTED] Request failed", logging.Fields{
		"path":    r.URL.Path,
		"status":  statusCode,
		"message": message,
	})

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/charts/seasons", h.GetSeasons).Methods("GET")
	router.HandleFunc("/api/charts/monthly", h.GetMonthly).Methods("GET")
	router.HandleFunc("/api/charts/hourly-weekday", h.GetHourlyWeekday).Methods("GET")
	router.HandleFunc("/api/charts/hourly-holiday", h.GetHourlyHoliday).Methods("GET")
	router.HandleFunc("/api/charts/{name:[a-z-]+}.svg", h.GetChartSVG).Methods("GET")
	router.HandleFunc("/api/details", h.GetDetails).Methods("GET")
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/dataset", h.GetDataset).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
