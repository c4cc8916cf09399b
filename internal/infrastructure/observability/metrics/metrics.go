package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors of the dashboard BFF.
// It implements port.FetchRecorder.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	FetchesTotal       *prometheus.CounterVec
	FetchDurationSec   prometheus.Histogram
	RateLimitDropped   prometheus.Counter
	AuthFailures       prometheus.Counter
	Sessions           prometheus.Gauge

	registry *prometheus.Registry
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_dashboard_requests_total",
			Help: "Total number of dashboard HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uptime_dashboard_request_duration_seconds",
			Help:    "Dashboard request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_dashboard_history_fetches_total",
			Help: "History fetches by outcome (ok, error, stale, empty_selection).",
		}, []string{"outcome"}),
		FetchDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uptime_dashboard_history_fetch_duration_seconds",
			Help:    "Backend history fetch duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptime_dashboard_ratelimit_dropped_total",
			Help: "Total number of requests dropped by the rate limiter.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptime_dashboard_auth_failures_total",
			Help: "Total number of rejected requests.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptime_dashboard_sessions",
			Help: "Dashboard sessions held in memory.",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.FetchesTotal,
		m.FetchDurationSec,
		m.RateLimitDropped,
		m.AuthFailures,
		m.Sessions,
	)

	return m
}

// RegisterClientGauge exposes the live websocket client count.
func (m *Metrics) RegisterClientGauge(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "uptime_dashboard_websocket_clients",
		Help: "Connected websocket clients.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) RecordFetch(outcome string, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.FetchDurationSec.Observe(duration.Seconds())
	}
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := normalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

// normalizeRoute keeps label cardinality bounded.
func normalizeRoute(path string) string {
	switch {
	case path == "/ws", path == "/healthz", path == "/readyz", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/api/v1/dashboard/reports"):
		return "/api/v1/dashboard/reports"
	case strings.HasPrefix(path, "/api/v1/dashboard"):
		return path
	case strings.HasPrefix(path, "/api/v1/auth/"):
		return "/api/v1/auth/*"
	case path == "/api/v1" || strings.HasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes websocket upgrades through.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
