package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportsTotal    *prometheus.CounterVec
	skippedTotal    prometheus.Counter
	issuesTotal     *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and report metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finreports_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_reports_generated_total",
		Help: "Rendered report bundles by output format.",
	}, []string{"format"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finreports_skipped_transactions_total",
		Help: "Transactions skipped because no posting rule matched their type.",
	})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_integrity_issues_total",
		Help: "Failed balancing checks by sheet.",
	}, []string{"sheet"})
	registry.MustRegister(requests, duration, reports, skipped, issues)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		reportsTotal:    reports,
		skippedTotal:    skipped,
		issuesTotal:     issues,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ReportGenerated counts one rendered bundle.
func (m *Metrics) ReportGenerated(format string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(format).Inc()
}

// TransactionsSkipped adds to the skipped transaction counter.
func (m *Metrics) TransactionsSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedTotal.Add(float64(n))
}

// IntegrityIssue counts one failed check on a sheet.
func (m *Metrics) IntegrityIssue(sheet string) {
	if m == nil {
		return
	}
	m.issuesTotal.WithLabelValues(sheet).Inc()
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
