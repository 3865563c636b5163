package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "trilemma", Subsystem: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "test"}, nil)
	assert.True(t, errors.IsValidation(err))
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:            "trilemma",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, nil)
	require.NoError(t, err)

	out := scrape(t, c)
	assert.Contains(t, out, "go_goroutines")
	assert.Contains(t, out, "trilemma_process_")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	views := c.RegisterCounter("views_total", "views", "outcome")
	views.WithLabelValues("ok").Add(3)
	views.WithLabelValues("no_data").Inc()

	out := scrape(t, c)
	assert.Contains(t, out, `trilemma_test_views_total{outcome="ok"} 3`)
	assert.Contains(t, out, `trilemma_test_views_total{outcome="no_data"} 1`)
}

func TestRegisterCounter_SameNameSharesVector(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("events_total", "events").WithLabelValues().Inc()
	c.RegisterCounter("events_total", "events").WithLabelValues().Inc()

	assert.Contains(t, scrape(t, c), "trilemma_test_events_total 2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("dataset_selections", "options", "kind")
	g.WithLabelValues("state").Set(27)
	g.WithLabelValues("state").Add(-1)

	assert.Contains(t, scrape(t, c), `trilemma_test_dataset_selections{kind="state"} 26`)
}

func TestRegisterHistogram(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterHistogram("load_seconds", "load", nil).WithLabelValues().Observe(0.2)
	c.RegisterHistogram("compute_seconds", "compute", []float64{0.001, 0.01}, "outcome").WithLabelValues("ok").Observe(0.005)

	out := scrape(t, c)
	assert.Contains(t, out, `trilemma_test_load_seconds_bucket{le="0.25"} 1`)
	assert.Contains(t, out, `trilemma_test_compute_seconds_bucket{outcome="ok",le="0.01"} 1`)
	assert.NotContains(t, out, `trilemma_test_compute_seconds_bucket{outcome="ok",le="0.1"}`)
}

func TestConstLabels(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:   "trilemma",
		ConstLabels: map[string]string{"deployment": "blue"},
	}, nil)
	require.NoError(t, err)
	c.RegisterCounter("views_total", "views").WithLabelValues().Inc()

	assert.Contains(t, scrape(t, c), `trilemma_views_total{deployment="blue"} 1`)
}

func TestTypeConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "counter").WithLabelValues().Inc()

	assert.NotPanics(t, func() {
		c.RegisterGauge("conflict", "gauge").WithLabelValues().Set(10)
		c.RegisterHistogram("conflict", "histogram", nil).WithLabelValues().Observe(1)
	})
	assert.Contains(t, scrape(t, c), "# TYPE trilemma_test_conflict counter")
}

func TestInvalidNameFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	assert.NotPanics(t, func() {
		c.RegisterCounter("bad name!", "invalid").WithLabelValues().Inc()
	})
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "help", "state").WithLabelValues("SP").Inc()
		}()
	}
	wg.Wait()

	assert.Contains(t, scrape(t, c), `trilemma_test_concurrent_total{state="SP"} 50`)
}

//Personal.AI order the ending
