// Package http exposes the collected bureau data over a small read-only REST
// surface, plus health and metrics endpoints.
package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ozsensors/bom-bridge/internal/bom"
	"github.com/ozsensors/bom-bridge/internal/degraded"
	"github.com/ozsensors/bom-bridge/internal/lifecycle"
	"github.com/ozsensors/bom-bridge/internal/models"
	"github.com/ozsensors/bom-bridge/internal/observability"
	"github.com/ozsensors/bom-bridge/internal/overload"
	"github.com/ozsensors/bom-bridge/internal/service"
	"github.com/ozsensors/bom-bridge/internal/validation"
)

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	OverloadWindow       time.Duration
	OverloadThresholdPct int
	RateLimitRPS         int
	DegradedWindow       time.Duration
	DegradedErrorPct     int
	StartTime            time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	registry         *service.Registry
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(registry *service.Registry, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		registry:     registry,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// NewRouter builds the full route table with middleware applied.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	r := mux.NewRouter()
	r.Use(CorrelationIDMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(RateLimitMiddleware(limiter))

	api := r.PathPrefix("/locations").Subrouter()
	if requestTimeout > 0 {
		api.Use(TimeoutMiddleware(requestTimeout))
	}
	api.HandleFunc("", h.ListLocations).Methods(http.MethodGet)
	api.HandleFunc("/{geohash}", h.GetLocation).Methods(http.MethodGet)
	api.HandleFunc("/{geohash}/observations", h.GetObservations).Methods(http.MethodGet)
	api.HandleFunc("/{geohash}/forecasts/daily", h.GetDailyForecasts).Methods(http.MethodGet)
	api.HandleFunc("/{geohash}/forecasts/hourly", h.GetHourlyForecasts).Methods(http.MethodGet)
	api.HandleFunc("/{geohash}/warnings", h.GetWarnings).Methods(http.MethodGet)

	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	return r
}

// ListLocations handles GET /locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": h.registry.Locations(),
	})
}

// GetLocation handles GET /locations/{geohash}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, func(c entrySource) models.Payload { return c.LocationsData() })
}

// GetObservations handles GET /locations/{geohash}/observations.
func (h *Handler) GetObservations(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, func(c entrySource) models.Payload { return c.ObservationsData() })
}

// GetDailyForecasts handles GET /locations/{geohash}/forecasts/daily.
func (h *Handler) GetDailyForecasts(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, func(c entrySource) models.Payload { return c.DailyForecastsData() })
}

// GetHourlyForecasts handles GET /locations/{geohash}/forecasts/hourly.
func (h *Handler) GetHourlyForecasts(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, func(c entrySource) models.Payload { return c.HourlyForecastsData() })
}

// GetWarnings handles GET /locations/{geohash}/warnings.
func (h *Handler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, func(c entrySource) models.Payload { return c.WarningsData() })
}

// entrySource is the snapshot interface handlers need from a collector.
type entrySource interface {
	LocationsData() models.Payload
	ObservationsData() models.Payload
	DailyForecastsData() models.Payload
	HourlyForecastsData() models.Payload
	WarningsData() models.Payload
}

// serveSnapshot resolves the geohash path variable and writes the selected
// snapshot. 400 for a malformed geohash, 404 for an unmonitored one, 503 when
// the collector has no data yet.
func (h *Handler) serveSnapshot(w http.ResponseWriter, r *http.Request, pick func(entrySource) models.Payload) {
	gh := mux.Vars(r)["geohash"]
	if err := validation.ValidateGeohash(gh); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_GEOHASH", err.Error())
		return
	}
	entry, ok := h.registry.Lookup(gh)
	if !ok {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_LOCATION", "geohash is not monitored: "+gh)
		return
	}
	payload := pick(entry.Collector)
	if payload == nil {
		writeError(w, r, http.StatusServiceUnavailable, "NO_DATA", "no data collected yet for "+entry.Name)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	locations := make([]map[string]interface{}, 0)
	for _, e := range h.registry.Entries() {
		entry := map[string]interface{}{
			"name":    e.Name,
			"geohash": e.Collector.Geohash(),
		}
		if fetchedAt, ok := e.Collector.LastFetched(bom.Observations); ok {
			entry["observations_age_seconds"] = int(time.Since(fetchedAt).Seconds())
		} else {
			entry["observations_age_seconds"] = nil
		}
		locations = append(locations, entry)
	}

	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "bom-bridge",
		"locations": locations,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates lifecycle conditions in priority order:
// shutting-down > overloaded > degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	threshold := float64(h.healthConfig.RateLimitRPS) * h.healthConfig.OverloadWindow.Seconds() * float64(h.healthConfig.OverloadThresholdPct) / 100
	if threshold > 0 && float64(overload.RequestCount(h.healthConfig.OverloadWindow)) > threshold {
		return healthResult{"overloaded", http.StatusServiceUnavailable, "overload_threshold"}
	}
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errors, total := degraded.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 {
			pct := float64(errors) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "bureau_error_rate"}
			}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value(correlationIDKey); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
