package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/newsbrief/internal/pipeline"
)

// PrometheusMetrics records HTTP and pipeline metrics. It implements
// pipeline.Observer.
type PrometheusMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec

	handler http.Handler
}

var _ pipeline.Observer = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the collectors on registerer. When
// registerer also implements prometheus.Gatherer it backs the HTTP handler;
// otherwise the default gatherer is used.
func NewPrometheusMetrics(namespace string, registerer prometheus.Registerer, logger zerolog.Logger) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	pm := &PrometheusMetrics{}

	pm.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status class",
		},
		[]string{"route", "status"},
	)

	pm.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to answer HTTP requests",
			// Provider calls dominate; a summary can take tens of seconds.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route", "status"},
	)

	pm.activeRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of requests currently being served",
		},
	)

	pm.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path", "stage"},
	)

	pm.stageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_failures_total",
			Help:      "Total number of pipeline runs that failed in a stage",
		},
		[]string{"path", "stage"},
	)

	registerer.MustRegister(
		pm.requestsTotal,
		pm.requestDuration,
		pm.activeRequests,
		pm.stageDuration,
		pm.stageFailures,
	)

	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	pm.handler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	logger.Debug().Str("namespace", namespace).Msg("prometheus metrics initialized")
	return pm
}

// RecordRequest records a finished HTTP request.
func (pm *PrometheusMetrics) RecordRequest(route string, statusCode int, duration time.Duration) {
	status := statusClass(statusCode)
	pm.requestsTotal.WithLabelValues(route, status).Inc()
	pm.requestDuration.WithLabelValues(route, status).Observe(duration.Seconds())
}

// IncActiveRequests increments the in-flight request gauge.
func (pm *PrometheusMetrics) IncActiveRequests() { pm.activeRequests.Inc() }

// DecActiveRequests decrements the in-flight request gauge.
func (pm *PrometheusMetrics) DecActiveRequests() { pm.activeRequests.Dec() }

// ObserveStage implements pipeline.Observer.
func (pm *PrometheusMetrics) ObserveStage(path pipeline.Path, stage pipeline.State, elapsed time.Duration, err error) {
	pm.stageDuration.WithLabelValues(string(path), string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		pm.stageFailures.WithLabelValues(string(path), string(stage)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (pm *PrometheusMetrics) Handler() http.Handler { return pm.handler }

// statusClass converts a status code to a range label (2xx, 3xx, 4xx, 5xx).
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 600:
		return strconv.Itoa(code/100) + "xx"
	default:
		return "unknown"
	}
}
