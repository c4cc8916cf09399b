package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
)

// ReadinessCheck probes one dependency.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]ReadinessCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]ReadinessCheck, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if checks == nil {
		checks = map[string]ReadinessCheck{}
	}
	return &HealthHandler{checks: checks, timeout: timeout}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readiness runs every check and reports 503 if any failed.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	middleware.WriteJSON(w, status, map[string]any{
		"ready":  status == http.StatusOK,
		"checks": results,
	})
}
