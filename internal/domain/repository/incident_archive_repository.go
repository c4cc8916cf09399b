package repository

import (
	"context"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
)

// IncidentArchiveRepository keeps incidents beyond the backend's retention.
// Incidents are keyed by (site_name, start_ts); saving an existing key updates it.
type IncidentArchiveRepository interface {
	SaveBatch(ctx context.Context, incidents []entity.Incident) error

	// FindBySite returns archived incidents newest first. An empty site means all sites.
	FindBySite(ctx context.Context, siteName string, limit int) ([]entity.Incident, error)
}
