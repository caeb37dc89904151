// Package main is the entrypoint for the exchange rates API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fxrates/fxrates/internal/cache"
	"github.com/fxrates/fxrates/internal/config"
	"github.com/fxrates/fxrates/internal/ecb"
	"github.com/fxrates/fxrates/internal/handler"
	"github.com/fxrates/fxrates/internal/metrics"
	"github.com/fxrates/fxrates/internal/middleware"
	"github.com/fxrates/fxrates/internal/refresh"
	"github.com/fxrates/fxrates/internal/repository"
	"github.com/fxrates/fxrates/internal/server"
	"github.com/fxrates/fxrates/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Optional PostgreSQL rate archive
	var repo *repository.Repository
	if cfg.ArchiveEnabled() {
		repo, err = repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		defer repo.Close()
		logger.Info("connected to database")
	}

	// Optional Redis response cache and rate limiter
	var cacheClient *cache.Cache
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	}

	recorder := metrics.NewInMemory()
	ratesService := service.NewRatesService(recorder)

	fetcher := ecb.NewClient(cfg.DatasetURL, cfg.FetchTimeout)
	snapshot := ecb.NewSnapshot(cfg.CacheDir)

	var archive refresh.Archive
	if repo != nil {
		archive = repo
	}
	worker := refresh.NewWorker(fetcher, snapshot, archive, ratesService, cfg.RefreshInterval, logger, recorder)

	if err := worker.Bootstrap(ctx); err != nil {
		logger.Error("failed to load initial dataset", "error", err)
		os.Exit(1)
	}

	h := handler.New()
	healthHandler := newHealthHandler(ratesService, repo, cacheClient)
	ratesHandler := handler.NewRatesHandler(ratesService, cacheClient, cfg.ResponseCacheTTL, logger, recorder)
	metricsHandler := handler.NewMetricsHandler(recorder)
	adminHandler := handler.NewAdminHandler(ratesService, worker, logger)

	r := setupRouter(h, healthHandler, ratesHandler, metricsHandler, adminHandler, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Background refresh keeps the dataset current. Registered before the
	// HTTP deps so it is the first component to stop on shutdown.
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(workerCtx)
	}()
	srv.OnShutdown("refresh worker", func(ctx context.Context) error {
		stopWorker()
		select {
		case err := <-workerDone:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"cache_dir", cfg.CacheDir,
		"refresh_interval", cfg.RefreshInterval.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newHealthHandler wires the optional backends without handing typed
// nil pointers to the interface fields.
func newHealthHandler(svc *service.RatesService, repo *repository.Repository, cacheClient *cache.Cache) *handler.HealthHandler {
	var db, redis handler.HealthChecker
	if repo != nil {
		db = repo
	}
	if cacheClient != nil {
		redis = cacheClient
	}
	return handler.NewHealthHandler(svc, db, redis)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	ratesHandler *handler.RatesHandler,
	metricsHandler *handler.MetricsHandler,
	adminHandler *handler.AdminHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health and metrics endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled && cacheClient != nil,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}

	// Public rate endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/", ratesHandler.Index)
		r.Get("/rates", ratesHandler.RatesLatest)
		r.Post("/rates", ratesHandler.Rates)
		r.Post("/rates/timeframe", ratesHandler.Timeframe)
	})

	// Operational endpoints, enabled only when an admin key is configured
	if cfg.AdminEnabled() {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(middleware.AdminAuth(middleware.AdminAuthConfig{
				Logger:  logger,
				KeyHash: cfg.AdminKeyHash,
			}))

			r.Post("/refresh", adminHandler.Refresh)
		})
	}

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
