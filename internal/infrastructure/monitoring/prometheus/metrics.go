package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal      CounterVec
	HTTPRequestDuration    HistogramVec
	RateLimitRejectedTotal CounterVec

	// Dashboard
	ViewsTotal           CounterVec
	ViewDuration         HistogramVec
	UndefinedAnglesTotal CounterVec

	// Dataset
	DatasetObservations GaugeVec
	DatasetSelections   GaugeVec
	DatasetLoadDuration HistogramVec

	// Messaging
	EventsPublishedTotal CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultViewDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05}
	DefaultLoadDurationBuckets = []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.RateLimitRejectedTotal = collector.RegisterCounter("rate_limit_rejected_total", "Requests answered with 429")

	m.ViewsTotal = collector.RegisterCounter("views_total", "Dashboard view computations", "outcome")
	m.ViewDuration = collector.RegisterHistogram("view_duration_seconds", "Dashboard view computation time", DefaultViewDurationBuckets, "outcome")
	m.UndefinedAnglesTotal = collector.RegisterCounter("undefined_angles_total", "Angle readouts shown as undefined", "angle")

	m.DatasetObservations = collector.RegisterGauge("dataset_observations", "Observations in the loaded indicator table")
	m.DatasetSelections = collector.RegisterGauge("dataset_selections", "Distinct state or year options", "kind")
	m.DatasetLoadDuration = collector.RegisterHistogram("dataset_load_duration_seconds", "Time to fetch and parse the dataset", DefaultLoadDurationBuckets, "source")

	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "View events handed to the broker", "topic", "status")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRateLimited(metrics *AppMetrics) {
	metrics.RateLimitRejectedTotal.WithLabelValues().Inc()
}

func RecordDatasetLoaded(metrics *AppMetrics, source string, observations, states, years int, duration time.Duration) {
	metrics.DatasetObservations.WithLabelValues().Set(float64(observations))
	metrics.DatasetSelections.WithLabelValues("state").Set(float64(states))
	metrics.DatasetSelections.WithLabelValues("year").Set(float64(years))
	metrics.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordEventPublished(metrics *AppMetrics, topic string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

// ViewRecorder feeds dashboard.Service measurements into AppMetrics.
type ViewRecorder struct {
	metrics *AppMetrics
}

// NewViewRecorder wraps metrics.
func NewViewRecorder(metrics *AppMetrics) *ViewRecorder {
	return &ViewRecorder{metrics: metrics}
}

// RecordView counts one computation by outcome.
func (r *ViewRecorder) RecordView(outcome string, duration time.Duration) {
	r.metrics.ViewsTotal.WithLabelValues(outcome).Inc()
	r.metrics.ViewDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordUndefinedAngle counts one undefined readout.
func (r *ViewRecorder) RecordUndefinedAngle(angle string) {
	r.metrics.UndefinedAnglesTotal.WithLabelValues(angle).Inc()
}

//Personal.AI order the ending
