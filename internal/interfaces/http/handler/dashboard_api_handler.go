package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

const maxRequestBytes = 64 << 10

// DashboardAPIHandler serves the per-session dashboard view.
type DashboardAPIHandler struct {
	loadUC      *usecase.LoadDashboardUseCase
	viewUC      *usecase.GetDashboardViewUseCase
	filtersUC   *usecase.UpdateAlertFiltersUseCase
	correlateUC *usecase.CorrelateSegmentUseCase
	logger      *logger.Logger
}

type loadRequest struct {
	Sites []string `json:"sites"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

type filtersRequest struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

type correlateRequest struct {
	SiteName string `json:"site_name"`
	StartTs  int64  `json:"start_ts"`
	EndTs    int64  `json:"end_ts"`
	Status   int    `json:"status"`
}

type correlateResponse struct {
	Applied bool `json:"applied"`
	View    any  `json:"view"`
}

func NewDashboardAPIHandler(
	loadUC *usecase.LoadDashboardUseCase,
	viewUC *usecase.GetDashboardViewUseCase,
	filtersUC *usecase.UpdateAlertFiltersUseCase,
	correlateUC *usecase.CorrelateSegmentUseCase,
	log *logger.Logger,
) *DashboardAPIHandler {
	return &DashboardAPIHandler{
		loadUC:      loadUC,
		viewUC:      viewUC,
		filtersUC:   filtersUC,
		correlateUC: correlateUC,
		logger:      log,
	}
}

// Load issues a history fetch. A failed fetch is still 200: the view carries
// the error state.
func (h *DashboardAPIHandler) Load(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}

	var req loadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.loadUC.Execute(r.Context(), sess, usecase.LoadDashboardCommand{
		Sites: req.Sites,
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRange) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to load dashboard", err, "session", sess.ID())
		middleware.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, view)
}

func (h *DashboardAPIHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.viewUC.Execute(sess))
}

func (h *DashboardAPIHandler) Filters(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}

	var req filtersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.filtersUC.Execute(r.Context(), sess, usecase.UpdateAlertFiltersCommand{
		Status: req.Status,
		Type:   req.Type,
	})
	if err != nil {
		if errors.Is(err, valueobject.ErrInvalidFilter) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update alert filters", err, "session", sess.ID())
		middleware.WriteError(w, http.StatusInternalServerError, "failed to update filters")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, view)
}

func (h *DashboardAPIHandler) Correlate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}

	var req correlateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SiteName) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "site_name is required")
		return
	}

	result, err := h.correlateUC.Execute(r.Context(), sess, usecase.CorrelateSegmentCommand{
		SiteName: req.SiteName,
		StartTs:  req.StartTs,
		EndTs:    req.EndTs,
		Status:   req.Status,
	})
	if err != nil {
		if errors.Is(err, valueobject.ErrInvalidSegmentStatus) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to correlate segment", err, "session", sess.ID())
		middleware.WriteError(w, http.StatusInternalServerError, "failed to correlate segment")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, correlateResponse{Applied: result.Applied, View: result.View})
}

// decodeBody writes the 4xx itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return false
		}
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
