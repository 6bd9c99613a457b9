package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the triage engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	votesAccepted   prometheus.Counter
	votesDuplicate  prometheus.Counter
	issuesVerified  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	votesAccepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_votes_accepted_total",
		Help: "Total votes accepted by the ledger",
	})

	votesDuplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_votes_duplicate_total",
		Help: "Total vote attempts rejected as duplicates",
	})

	issuesVerified := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_issues_verified_total",
		Help: "Total issues flipped to verified by the vote threshold",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, votesAccepted, votesDuplicate, issuesVerified, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		votesAccepted:   votesAccepted,
		votesDuplicate:  votesDuplicate,
		issuesVerified:  issuesVerified,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordVote counts an accepted vote.
func (m *MetricsService) RecordVote() {
	if m == nil {
		return
	}
	m.votesAccepted.Inc()
}

// RecordDuplicateVote counts a vote rejected by ledger uniqueness.
func (m *MetricsService) RecordDuplicateVote() {
	if m == nil {
		return
	}
	m.votesDuplicate.Inc()
}

// RecordVerification counts an auto-verification flip.
func (m *MetricsService) RecordVerification() {
	if m == nil {
		return
	}
	m.issuesVerified.Inc()
}
