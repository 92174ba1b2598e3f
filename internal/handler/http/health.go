package http

import (
	"LinkBio-Backend/internal/analytics"
	"LinkBio-Backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	storage  repository.Storage
	recorder *analytics.Recorder
	log      *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storage repository.Storage, recorder *analytics.Recorder, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		recorder: recorder,
		log:      log,
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health reports overall service health, including a storage probe.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"

	// A lookup for a name that cannot exist exercises the full storage
	// path; only a non-not-found error means trouble.
	_, err := h.storage.GetProfileByUsername(ctx, "health-check-non-existent")
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        "1.0.0",
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", zap.Error(err))
	}
}

// Ready is the readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode ready response", zap.Error(err))
	}
}

// Metrics exposes uptime plus the analytics recorder state.
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": time.Since(startTime).Seconds(),
		"timestamp":      time.Now(),
		"version":        "1.0.0",
		"analytics":      h.recorder.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		h.log.Error("failed to encode metrics response", zap.Error(err))
	}
}
