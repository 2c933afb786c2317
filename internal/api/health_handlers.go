package api

import (
	"context"
	"net/http"
	"time"
)

// checkTimeout bounds each dependency probe so a hung backend cannot wedge
// the readiness endpoint.
const checkTimeout = 5 * time.Second

// HealthChecker probes one dependency. Implementations live next to the
// client they check (internal/health).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlers serves the liveness (/health) and readiness (/ready)
// probes.
type HealthHandlers struct {
	checkers map[string]HealthChecker
}

// NewHealthHandlers creates health handlers with no dependency checks
// registered.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{checkers: make(map[string]HealthChecker)}
}

// AddChecker registers a named dependency check for the readiness probe.
func (h *HealthHandlers) AddChecker(name string, c HealthChecker) {
	h.checkers[name] = c
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health handles GET /health: process liveness, no dependency probes.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready: runs every registered dependency check and
// returns 503 if any fail, with per-check results in the body.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	status := "ok"
	checks := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := checker.HealthCheck(ctx)
		cancel()

		if err != nil {
			status = "unavailable"
			checks[name] = err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
