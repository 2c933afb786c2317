package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(_ context.Context) error {
	return s.err
}

func TestHealth(t *testing.T) {
	h := NewHealthHandlers()

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", resp.Timestamp, err)
	}
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandlers()

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodPost, "/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]HealthChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no checkers registered",
			checkers:   nil,
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name: "all checks pass",
			checkers: map[string]HealthChecker{
				"database": stubChecker{},
				"redis":    stubChecker{},
			},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name: "one check fails",
			checkers: map[string]HealthChecker{
				"database": stubChecker{},
				"redis":    stubChecker{err: errors.New("connection refused")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers()
			for name, c := range tt.checkers {
				h.AddChecker(name, c)
			}

			w := httptest.NewRecorder()
			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp healthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantBody)
			}
		})
	}
}

func TestReady_ReportsPerCheckResults(t *testing.T) {
	h := NewHealthHandlers()
	h.AddChecker("database", stubChecker{})
	h.AddChecker("redis", stubChecker{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database check = %q, want ok", resp.Checks["database"])
	}
	if resp.Checks["redis"] != "connection refused" {
		t.Errorf("redis check = %q, want the probe error", resp.Checks["redis"])
	}
}
