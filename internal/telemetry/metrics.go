// Package telemetry holds the Prometheus metrics exported at /metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pubdir"

// Sync outcomes recorded by RecordSync.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	FacultyRegistered  prometheus.Counter
	PublicationsAdded  *prometheus.CounterVec
	ScholarSyncs       *prometheus.CounterVec
	ScholarSyncSeconds prometheus.Histogram
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the metrics on a private registry along with Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FacultyRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faculty_registered_total",
			Help:      "Total number of faculty accounts created",
		}),
		PublicationsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publications_added_total",
			Help:      "Publications stored, by source",
		}, []string{"source"}),
		ScholarSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scholar_syncs_total",
			Help:      "Google Scholar sync attempts, by result",
		}, []string{"result"}),
		ScholarSyncSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scholar_sync_duration_seconds",
			Help:      "Latency of a full Google Scholar sync",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry (for tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementFacultyRegistered counts one new account.
func (m *Metrics) IncrementFacultyRegistered() {
	m.FacultyRegistered.Inc()
}

// AddPublications counts n stored publications from source.
func (m *Metrics) AddPublications(source string, n int) {
	if n > 0 {
		m.PublicationsAdded.WithLabelValues(source).Add(float64(n))
	}
}

// RecordSync records one scholar sync and its duration.
func (m *Metrics) RecordSync(err error, elapsed time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.ScholarSyncs.WithLabelValues(result).Inc()
	m.ScholarSyncSeconds.Observe(elapsed.Seconds())
}

// Middleware records request counts and latency keyed by the matched chi
// route pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
