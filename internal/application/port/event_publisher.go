package port

import (
	"context"
	"time"
)

// Event subjects published by the dashboard.
const (
	SubjectDashboardLoaded     = "uptime.dashboard.loaded"
	SubjectDashboardCorrelated = "uptime.dashboard.correlated"
	SubjectFetchFailed         = "uptime.dashboard.fetch_failed"
	SubjectSiteStatusChanged   = "uptime.site.status_changed"
)

// Event is the envelope every published message uses.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// EventPublisher defines the interface for publishing events to a message broker
type EventPublisher interface {
	// PublishEvent publishes an event to the specified subject
	PublishEvent(ctx context.Context, subject string, event Event) error

	Close() error
}
