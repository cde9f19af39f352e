package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"bike-dashboard/pkg/logging"
)

// NewRouter wires the dashboard routes, API docs and the metrics endpoint
func NewRouter(h *DashboardHandler, logger *logging.StructuredLogger, metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog(logger))

	h.RegisterRoutes(router)

	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI("/api/docs/openapi.json", logger)).Methods("GET")
	router.Handle("/metrics", metricsHandler).Methods("GET")

	return router
}
