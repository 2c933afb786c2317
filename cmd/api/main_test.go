package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alivegrid/alivegrid/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		Env:               "development",
		RateLimitRequests: config.DefaultRateLimitRequests,
		RateLimitWindowS:  config.DefaultRateLimitWindowS,
	}
}

func buildTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(context.Background(), testConfig(), logger, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("failed to build application: %v", err)
	}
	t.Cleanup(app.close)
	return app
}

// TestApplication_ServesSampleFeed verifies the in-memory development mode:
// no database configured, sample reports seeded and served.
func TestApplication_ServesSampleFeed(t *testing.T) {
	app := buildTestApplication(t)

	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/short", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Posts []json.RawMessage `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode feed: %v", err)
	}
	if len(resp.Posts) == 0 {
		t.Error("sample feed is empty")
	}
}

func TestApplication_Routes(t *testing.T) {
	app := buildTestApplication(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "root banner", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/ready", wantStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "long feed", method: http.MethodGet, path: "/posts/long", wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/nonexistent", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

// TestApplication_RequestIDHeader verifies the outermost middleware is wired.
func TestApplication_RequestIDHeader(t *testing.T) {
	app := buildTestApplication(t)

	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

// TestGracefulShutdown verifies in-flight requests finish before Shutdown
// returns.
func TestGracefulShutdown(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(slow)
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		resp, err := http.Get(server.URL)
		if err == nil {
			resp.Body.Close()
		}
		done <- err
	}()

	// Give the request time to be in flight, then shut down.
	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Config.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("in-flight request failed during shutdown: %v", err)
	}
}
