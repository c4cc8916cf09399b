package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

type ArchiveAPIHandler struct {
	listUC *usecase.ListArchivedIncidentsUseCase
	logger *logger.Logger
}

type archiveResponse struct {
	Site  string            `json:"site"`
	Items []dto.AlertRowDTO `json:"items"`
}

func NewArchiveAPIHandler(listUC *usecase.ListArchivedIncidentsUseCase, log *logger.Logger) *ArchiveAPIHandler {
	return &ArchiveAPIHandler{listUC: listUC, logger: log}
}

func (h *ArchiveAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.listUC == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "incident archive is not configured")
		return
	}

	site := strings.TrimSpace(r.URL.Query().Get("site"))
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	rows, err := h.listUC.Execute(r.Context(), site, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidArchiveQuery) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to list archived incidents", err, "site", site)
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list archived incidents")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, archiveResponse{Site: site, Items: rows})
}
