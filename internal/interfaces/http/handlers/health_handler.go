package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Checker is a dependency consulted by the readiness check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) error
}

func (n namedCheck) Name() string                    { return n.name }
func (n namedCheck) Check(ctx context.Context) error { return n.fn(ctx) }

// NamedCheck turns fn into a Checker reported as name.
func NamedCheck(name string, fn func(ctx context.Context) error) Checker {
	return namedCheck{name: name, fn: fn}
}

// HealthReport is the body of every health endpoint.  Liveness omits
// Components; readiness omits Version and Uptime.
type HealthReport struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

// ComponentStatus is one checker's outcome.
type ComponentStatus struct {
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler serves /healthz, /readyz and /healthz/detail.
type HealthHandler struct {
	checkers []Checker
	version  string
	started  time.Time
	timeout  time.Duration
}

func NewHealthHandler(version string, checkers ...Checker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		started:  time.Now(),
		timeout:  5 * time.Second,
	}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
	r.Get("/healthz/detail", h.Detailed)
}

// Liveness never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthReport{Status: "alive", Version: h.version, Uptime: h.uptime()})
}

// Readiness answers 503 as soon as one checker fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	components, ok := h.runChecks(r.Context())
	report := HealthReport{Status: "ready", Components: components}
	if !ok {
		report.Status = "not_ready"
	}
	writeJSON(w, statusFor(ok), report)
}

// Detailed is Readiness plus build and uptime information.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	components, ok := h.runChecks(r.Context())
	report := HealthReport{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     h.uptime(),
		Components: components,
	}
	if !ok {
		report.Status = "degraded"
	}
	writeJSON(w, statusFor(ok), report)
}

func statusFor(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.started).Truncate(time.Second).String()
}

// runChecks runs every checker in parallel under one shared deadline.
func (h *HealthHandler) runChecks(ctx context.Context) (map[string]ComponentStatus, bool) {
	if len(h.checkers) == 0 {
		return nil, true
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	type outcome struct {
		name   string
		status ComponentStatus
	}
	done := make(chan outcome, len(h.checkers))
	for _, c := range h.checkers {
		go func(c Checker) {
			start := time.Now()
			err := c.Check(ctx)
			st := ComponentStatus{Healthy: err == nil, Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				st.Error = err.Error()
			}
			done <- outcome{name: c.Name(), status: st}
		}(c)
	}

	components := make(map[string]ComponentStatus, len(h.checkers))
	ok := true
	for range h.checkers {
		o := <-done
		components[o.name] = o.status
		ok = ok && o.status.Healthy
	}
	return components, ok
}

//Personal.AI order the ending
