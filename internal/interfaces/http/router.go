package http

import (
	"net/http"

	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/handler"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/config"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts. Archive and Reports may be
// nil when their storage is not configured.
type Handlers struct {
	Dashboard  *handler.DashboardAPIHandler
	StatusWall *handler.StatusWallHandler
	Sites      *handler.SitesHandler
	Reports    *handler.ReportAPIHandler
	Archive    *handler.ArchiveAPIHandler
	WebSocket  *handler.WebSocketHandler
	Auth       *handler.AuthAPIHandler
	Health     *handler.HealthHandler
}

// Router wires the BFF API.
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	sessions *session.Store
	limiter  *middleware.IPRateLimiter
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	security config.SecurityConfig
	logger   *logger.Logger
}

func NewRouter(
	handlers Handlers,
	sessions *session.Store,
	limiter *middleware.IPRateLimiter,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	security config.SecurityConfig,
	log *logger.Logger,
) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		handlers: handlers,
		sessions: sessions,
		limiter:  limiter,
		metrics:  m,
		registry: registry,
		security: security,
		logger:   log,
	}
}

func (rt *Router) Setup() http.Handler {
	var onAuthReject, onRateDrop func()
	if rt.metrics != nil {
		onAuthReject = rt.metrics.AuthFailures.Inc
		onRateDrop = rt.metrics.RateLimitDropped.Inc
	}

	auth := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger, onAuthReject)
	withSession := middleware.Session(rt.sessions)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(withSession(h))
	}

	// probes stay unauthenticated
	rt.mux.HandleFunc("GET /healthz", rt.handlers.Health.Liveness)
	rt.mux.HandleFunc("GET /readyz", rt.handlers.Health.Readiness)
	if rt.registry != nil {
		rt.mux.Handle("GET /metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	rt.mux.HandleFunc("POST /api/v1/auth/login", rt.handlers.Auth.Login)
	rt.mux.HandleFunc("POST /api/v1/auth/logout", rt.handlers.Auth.Logout)
	rt.mux.HandleFunc("GET /api/v1/auth/status", rt.handlers.Auth.Status)

	rt.mux.Handle("GET /api/v1/status-wall", protected(rt.handlers.StatusWall.Get))
	if rt.handlers.Sites != nil {
		rt.mux.Handle("GET /api/v1/sites", auth(http.HandlerFunc(rt.handlers.Sites.List)))
	}
	rt.mux.Handle("GET /api/v1/dashboard", protected(rt.handlers.Dashboard.View))
	rt.mux.Handle("POST /api/v1/dashboard/load", protected(rt.handlers.Dashboard.Load))
	rt.mux.Handle("PUT /api/v1/dashboard/filters", protected(rt.handlers.Dashboard.Filters))
	rt.mux.Handle("POST /api/v1/dashboard/correlate", protected(rt.handlers.Dashboard.Correlate))

	if rt.handlers.Reports != nil {
		rt.mux.Handle("POST /api/v1/dashboard/reports", protected(rt.handlers.Reports.Export))
		rt.mux.Handle("GET /api/v1/dashboard/reports", protected(rt.handlers.Reports.List))
	}
	if rt.handlers.Archive != nil {
		rt.mux.Handle("GET /api/v1/incidents/archive", protected(rt.handlers.Archive.List))
	}

	rt.mux.Handle("GET /ws", protected(rt.handlers.WebSocket.HandleConnection))

	var h http.Handler = rt.mux
	if rt.limiter != nil {
		h = middleware.RateLimit(rt.limiter, onRateDrop)(h)
	}
	h = middleware.Compression(h)
	if rt.metrics != nil {
		h = rt.metrics.Middleware(h)
	}
	h = middleware.Logger(rt.logger)(h)
	h = middleware.Recovery(rt.logger)(h)
	h = middleware.RequestID(h)

	return h
}
