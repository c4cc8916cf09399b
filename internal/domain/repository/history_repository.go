package repository

import (
	"context"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// HistoryRepository is the uptime backend seen as a read-only source of
// history snapshots and current health.
type HistoryRepository interface {
	// FetchHistory loads one snapshot for the query's sites and range
	FetchHistory(ctx context.Context, query valueobject.HistoryQuery) (*entity.HistorySnapshot, error)

	// FetchHealth loads the latest check result for every known site
	FetchHealth(ctx context.Context) ([]entity.SiteHealth, error)
}
