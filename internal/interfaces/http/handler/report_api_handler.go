package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

type ReportAPIHandler struct {
	exportUC *usecase.ExportDashboardReportUseCase
	listUC   *usecase.ListDashboardReportsUseCase
	logger   *logger.Logger
}

type exportRequest struct {
	DashboardID string    `json:"dashboard_id"`
	CapturedAt  time.Time `json:"captured_at"`
}

func NewReportAPIHandler(
	exportUC *usecase.ExportDashboardReportUseCase,
	listUC *usecase.ListDashboardReportsUseCase,
	log *logger.Logger,
) *ReportAPIHandler {
	return &ReportAPIHandler{exportUC: exportUC, listUC: listUC, logger: log}
}

func (h *ReportAPIHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}

	var req exportRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	report, err := h.exportUC.Execute(r.Context(), sess, usecase.ExportDashboardReportCommand{
		DashboardID: req.DashboardID,
		CapturedAt:  req.CapturedAt,
	})
	if err != nil {
		status := reportErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to export dashboard report", err, "session", sess.ID())
		}
		middleware.WriteError(w, status, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, report)
}

// List reads ?dashboard_id=&limit=&cursor=; dashboard_id defaults to the session.
func (h *ReportAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dashboardID := strings.TrimSpace(query.Get("dashboard_id"))
	if dashboardID == "" {
		if sess := middleware.SessionFrom(r.Context()); sess != nil {
			dashboardID = sess.ID()
		}
	}

	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	reports, err := h.listUC.Execute(r.Context(), usecase.ListDashboardReportsCommand{
		DashboardID: dashboardID,
		Limit:       limit,
		Cursor:      query.Get("cursor"),
	})
	if err != nil {
		status := reportErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to list dashboard reports", err, "dashboard_id", dashboardID)
		}
		middleware.WriteError(w, status, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, reports)
}

func reportErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidDashboardID):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNothingToExport):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrReportsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, port.ErrInvalidCursor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
