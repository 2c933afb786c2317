// Package main is the entry point for the A-Live-Grid API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/alivegrid/alivegrid/internal/api"
	"github.com/alivegrid/alivegrid/internal/auth"
	"github.com/alivegrid/alivegrid/internal/classify"
	"github.com/alivegrid/alivegrid/internal/config"
	"github.com/alivegrid/alivegrid/internal/db"
	"github.com/alivegrid/alivegrid/internal/health"
	"github.com/alivegrid/alivegrid/internal/middleware"
	"github.com/alivegrid/alivegrid/internal/post"
	"github.com/alivegrid/alivegrid/internal/ranking"
	"github.com/alivegrid/alivegrid/internal/tracing"
	"github.com/alivegrid/alivegrid/internal/vote"
)

const serviceName = "alivegrid-api"

// application bundles the composed HTTP handler with the resources that have
// to be released on shutdown.
type application struct {
	handler http.Handler
	cleanup []func()
}

func (a *application) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// buildApplication wires storage, ranking, voting, and the middleware chain
// from configuration. With no database configured it serves sample reports
// from memory, which is the local development mode.
func buildApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*application, error) {
	app := &application{}
	healthHandlers := api.NewHealthHandlers()

	var posts post.Repository
	var votes vote.Repository
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		app.cleanup = append(app.cleanup, func() { _ = sqlDB.Close() })
		posts = post.NewPostgresRepository(sqlDB)
		votes = vote.NewPostgresRepository(sqlDB)
		healthHandlers.AddChecker("database", health.NewDBChecker(sqlDB))
	} else {
		logger.Info("no database configured, serving sample reports from memory")
		mem := post.NewInMemoryRepository()
		seeds := post.SampleData()
		for _, p := range seeds {
			p.Karma = vote.Karma(p.UpvoteCount)
		}
		if err := post.Seed(ctx, mem, seeds); err != nil {
			return nil, fmt.Errorf("seed sample reports: %w", err)
		}
		posts = mem
		votes = vote.NewInMemoryRepository()
	}

	ledger := vote.NewLedger(posts, votes)

	weights := ranking.DefaultWeights()
	if cfg.RankingCalibrationPath != "" {
		loaded, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
		if err != nil {
			logger.Warn("failed to load ranking calibration, using defaults",
				"path", cfg.RankingCalibrationPath, "error", err)
		} else {
			weights = loaded
		}
	}
	reranker := ranking.NewReranker(weights)

	metrics := middleware.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	// Rate limiting: shared Redis window when configured, per-process
	// otherwise.
	var limitStore middleware.RateLimitStore = middleware.NewInMemoryRateLimitStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		app.cleanup = append(app.cleanup, func() { _ = client.Close() })
		limitStore = middleware.NewRedisRateLimitStore(client).WithMetrics(metrics)
		healthHandlers.AddChecker("redis", health.NewRedisChecker(client))
	}
	globalLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitRequests,
		WindowDuration:    time.Duration(cfg.RateLimitWindowS) * time.Second,
	}

	handlers := &api.Handlers{
		Posts:  api.NewPostHandlers(posts, ledger, classify.Static{}),
		Feed:   api.NewFeedHandlers(posts, reranker),
		Votes:  api.NewVoteHandlers(ledger),
		Health: healthHandlers,
	}

	mux := http.NewServeMux()
	handlers.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			api.WriteError(w, r, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"` + serviceName + `"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain, applied innermost first. Auth sits outside Logging so
	// user_id reaches the access log; Logging sits outside the rate limiter
	// so 429s are logged too.
	handler := http.Handler(mux)
	handler = middleware.RateLimiter(limitStore, globalLimit, middleware.UserKeyFunc())(handler)
	handler = middleware.Logging(logger)(handler)
	if cfg.JWTSecret != "" {
		handler = middleware.Auth(auth.NewJWTService(cfg.JWTSecret))(handler)
	}
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})(handler)
	handler = middleware.HTTPMetrics(metrics)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing(serviceName)(handler)
	}
	if !cfg.IsProduction() {
		handler = middleware.Profiling(middleware.ProfilingConfig{
			Enabled:     true,
			Environment: cfg.Env,
		})(handler)
	}
	handler = middleware.RequestID(handler)

	app.handler = handler
	return app, nil
}

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("A-Live-Grid API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "configuration error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	provider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporterType,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(context.Background(), cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := provider.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
	}

	logger.Info("server stopped")
}
