package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check probes one dependency and returns nil when it is serving.
type Check func(ctx context.Context) error

// HealthChecker serves liveness and readiness probes on the ops port.
type HealthChecker struct {
	version string
	checks  map[string]Check
}

// NewHealthChecker creates a health checker reporting the given version.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		version: version,
		checks:  make(map[string]Check),
	}
}

// AddCheck registers a named readiness check.
func (h *HealthChecker) AddCheck(name string, check Check) {
	h.checks[name] = check
}

// HealthStatus is the probe response body.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Liveness always returns 200 while the process is running.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

// Readiness runs every registered check and returns 503 when any fails.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]string, len(h.checks)),
	}

	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Dependencies[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status.Dependencies[name] = StatusHealthy
	}

	writeStatus(w, code, status)
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
