package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
)

// RequestObserver receives one call per completed request.  route is the
// matched chi pattern, or "unmatched".
type RequestObserver func(method, route string, status int, duration time.Duration)

type LoggingConfig struct {
	// SkipPaths are observed but never logged.
	SkipPaths []string
	// SlowThreshold promotes successful requests to WARN.
	SlowThreshold time.Duration
	Observer      RequestObserver
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 2 * time.Second,
	}
}

// RequestLogging writes one access-log entry per request and reports it to
// config.Observer.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if config.Observer != nil {
				config.Observer(r.Method, routePattern(r), status, elapsed)
			}
			if _, ok := skip[r.URL.Path]; ok {
				return
			}

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.RequestURI()),
				logging.Int("status", status),
				logging.Duration("duration", elapsed),
				logging.Int("bytes", ww.BytesWritten()),
				logging.String("remote_addr", r.RemoteAddr),
			}
			if ua := r.UserAgent(); ua != "" {
				fields = append(fields, logging.String("user_agent", ua))
			}

			log := logging.WithContext(r.Context(), logger)
			switch {
			case status >= http.StatusInternalServerError:
				log.Error("http request completed with server error", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("http request completed with client error", fields...)
			case config.SlowThreshold > 0 && elapsed >= config.SlowThreshold:
				log.Warn("http request completed (slow)", fields...)
			default:
				log.Info("http request completed", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

//Personal.AI order the ending
