package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"lungrisk/pkg/logger"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Checker reports whether a dependency is reachable.
// *database.Client and *redis.Client implement it.
type Checker interface {
	Health(ctx context.Context) error
}

// ModelLister reports the loaded models. *ml.Cache implements it.
type ModelLister interface {
	Available() []string
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      map[string]Checker
	models      ModelLister
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a health handler. checks are probed by readiness; nil entries are skipped.
func New(log *logger.Logger, models ModelLister, checks map[string]Checker, serviceName, version string) *Handler {
	active := make(map[string]Checker, len(checks))
	for name, c := range checks {
		if c != nil {
			active[name] = c
		}
	}
	return &Handler{
		log:         log,
		checks:      active,
		models:      models,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// Register mounts the probe routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /live", h.HandleLiveness)
	mux.HandleFunc("GET /ready", h.HandleReadiness)
}

// APIHealth is the payload of /api/health.
type APIHealth struct {
	Status          string   `json:"status"`
	Message         string   `json:"message"`
	AvailableModels []string `json:"available_models"`
}

// ReadinessStatus represents the overall readiness
type ReadinessStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Models    []string                   `json:"models"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleHealth reports that the API is up together with the loaded models.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIHealth{
		Status:          statusHealthy,
		Message:         "Lung Cancer Prediction API is running",
		AvailableModels: h.availableModels(),
	})
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness probes every dependency. A failed dependency makes the
// service unhealthy (503); running without models is degraded (200).
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]ComponentHealth, len(names))
	healthy := true
	for _, name := range names {
		c := h.check(ctx, name, h.checks[name])
		checks[name] = c
		if c.Status != statusHealthy {
			healthy = false
		}
	}

	models := h.availableModels()
	status := ReadinessStatus{
		Status:    statusHealthy,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Models:    models,
		Checks:    checks,
	}

	code := http.StatusOK
	switch {
	case !healthy:
		status.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	case len(models) == 0:
		status.Status = statusDegraded
	}

	writeJSON(w, code, status)
}

func (h *Handler) check(ctx context.Context, name string, c Checker) ComponentHealth {
	start := time.Now()
	err := c.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Warnw("Health check failed", "component", name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       statusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       statusHealthy,
		ResponseTime: elapsed.String(),
	}
}

func (h *Handler) availableModels() []string {
	models := h.models.Available()
	if models == nil {
		return []string{}
	}
	return models
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
