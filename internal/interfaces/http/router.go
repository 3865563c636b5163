package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	Logging     middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  Nil handlers and middleware are skipped.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	loggingCfg := cfg.Logging
	if cfg.Metrics != nil && loggingCfg.Observer == nil {
		metrics := cfg.Metrics
		loggingCfg.Observer = func(method, route string, status int, d time.Duration) {
			prometheus.RecordHTTPRequest(metrics, method, route, status, d)
		}
	}

	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(logger, loggingCfg))
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		rlCfg := middleware.DefaultRateLimitConfig()
		rlCfg.Logger = logger
		if cfg.Metrics != nil {
			metrics := cfg.Metrics
			rlCfg.OnRejected = func(string) { prometheus.RecordRateLimited(metrics) }
		}
		r.Use(middleware.RateLimit(cfg.RateLimiter, rlCfg))
	}

	// --- Probes and metrics ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	// --- Dashboard page and API v1 ---
	if cfg.DashboardHandler != nil {
		cfg.DashboardHandler.RegisterPage(r)
		r.Route("/api/v1", cfg.DashboardHandler.RegisterRoutes)
	}

	return r
}

//Personal.AI order the ending
