package handler

import (
	"net/http"

	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/config"
)

type SitesHandler struct {
	catalog *config.SiteCatalog
}

func NewSitesHandler(catalog *config.SiteCatalog) *SitesHandler {
	if catalog == nil {
		catalog = &config.SiteCatalog{}
	}
	return &SitesHandler{catalog: catalog}
}

// List returns the configured site catalog and its default selection.
func (h *SitesHandler) List(w http.ResponseWriter, _ *http.Request) {
	sites := h.catalog.Sites
	if sites == nil {
		sites = []config.SiteEntry{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"sites":             sites,
		"default_selection": h.catalog.DefaultSelection(),
	})
}
