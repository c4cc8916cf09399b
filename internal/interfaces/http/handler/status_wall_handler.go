package handler

import (
	"net/http"

	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
)

type StatusWallHandler struct {
	refreshUC *usecase.RefreshStatusWallUseCase
}

func NewStatusWallHandler(refreshUC *usecase.RefreshStatusWallUseCase) *StatusWallHandler {
	return &StatusWallHandler{refreshUC: refreshUC}
}

// Get returns the last polled wall with the session's site selection.
func (h *StatusWallHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "session is not resolved")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.refreshUC.ForSession(sess))
}
