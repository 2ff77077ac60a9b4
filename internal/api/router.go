package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// readinessTimeout bounds the store ping behind /healthz.
const readinessTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.metricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "Method Not Allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleReadiness)
	r.Get("/metrics", s.handleMetrics)

	// Mounted, so both /devices and /devices/ reach the "/" routes.
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleListDevices)
		r.Post("/", s.handleCreateDevice)

		r.Get("/{device_id}", s.handleGetDevice)
		r.Delete("/{device_id}", s.handleDeleteDevice)
	})

	return r
}

// handleRoot is the liveness probe.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Device Management API is running",
	})
}

// readinessResponse is the GET /healthz body. Checks holds "ok" or the
// failure text for the store and every enabled link.
type readinessResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// handleReadiness reports whether the device store and every enabled
// outbound link are usable. Any failing check answers 503.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]HealthChecker{
		"database": HealthCheckFunc(s.registry.Ping),
	}
	if s.mqtt != nil {
		checks["mqtt"] = s.mqtt
	}
	if s.influx != nil {
		checks["influxdb"] = s.influx
	}

	resp := readinessResponse{
		Status:  "ok",
		Version: s.version,
		Checks:  make(map[string]string, len(checks)),
	}
	for name, check := range checks {
		if err := check.HealthCheck(ctx); err != nil {
			s.logger.Warn("readiness check failed", "check", name, "error", err)
			resp.Status = "unavailable"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
