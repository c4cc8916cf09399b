package port

import (
	"context"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
)

// MetricsPublisher pushes dashboard summary metrics to an observability platform.
type MetricsPublisher interface {
	// PublishBatch buffers metrics; implementations flush by size and interval.
	PublishBatch(ctx context.Context, metrics []*entity.Metric) error

	Flush(ctx context.Context) error
}
