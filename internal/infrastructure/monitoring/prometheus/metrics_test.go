package prometheus

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.RateLimitRejectedTotal)
	assert.NotNil(t, m.ViewsTotal)
	assert.NotNil(t, m.ViewDuration)
	assert.NotNil(t, m.UndefinedAnglesTotal)
	assert.NotNil(t, m.DatasetObservations)
	assert.NotNil(t, m.DatasetSelections)
	assert.NotNil(t, m.DatasetLoadDuration)
	assert.NotNil(t, m.EventsPublishedTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordHTTPRequest(m, http.MethodGet, "/api/v1/view", http.StatusNotFound, 3*time.Millisecond)

	out := scrape(t, c)
	assert.Contains(t, out, `trilemma_test_http_requests_total{method="GET",route="/api/v1/view",status_code="404"} 1`)
	assert.Contains(t, out, `trilemma_test_http_request_duration_seconds_count{method="GET",route="/api/v1/view"} 1`)
}

func TestRecordRateLimited(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordRateLimited(m)
	RecordRateLimited(m)
	assert.Contains(t, scrape(t, c), "trilemma_test_rate_limit_rejected_total 2")
}

func TestRecordDatasetLoaded(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordDatasetLoaded(m, "minio", 81, 27, 3, time.Second)

	out := scrape(t, c)
	assert.Contains(t, out, "trilemma_test_dataset_observations 81")
	assert.Contains(t, out, `trilemma_test_dataset_selections{kind="state"} 27`)
	assert.Contains(t, out, `trilemma_test_dataset_selections{kind="year"} 3`)
	assert.Contains(t, out, `trilemma_test_dataset_load_duration_seconds_count{source="minio"} 1`)
}

func TestRecordEventPublished(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordEventPublished(m, "trilemma.view.computed", nil)
	RecordEventPublished(m, "trilemma.view.computed", fmt.Errorf("broker down"))

	out := scrape(t, c)
	assert.Contains(t, out, `trilemma_test_events_published_total{status="success",topic="trilemma.view.computed"} 1`)
	assert.Contains(t, out, `trilemma_test_events_published_total{status="failure",topic="trilemma.view.computed"} 1`)
}

func TestViewRecorder(t *testing.T) {
	m, c := newTestAppMetrics(t)
	r := NewViewRecorder(m)
	r.RecordView("ok", 50*time.Microsecond)
	r.RecordView("no_data", 10*time.Microsecond)
	r.RecordUndefinedAngle("generic_ideal")

	out := scrape(t, c)
	assert.Contains(t, out, `trilemma_test_views_total{outcome="ok"} 1`)
	assert.Contains(t, out, `trilemma_test_views_total{outcome="no_data"} 1`)
	assert.Contains(t, out, `trilemma_test_undefined_angles_total{angle="generic_ideal"} 1`)
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, c := newTestAppMetrics(t)
	r := NewViewRecorder(m)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordView("ok", time.Microsecond)
		}()
	}
	wg.Wait()

	assert.Contains(t, scrape(t, c), `trilemma_test_views_total{outcome="ok"} 100`)
}

//Personal.AI order the ending
