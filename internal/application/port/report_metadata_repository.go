package port

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCursor is returned for a malformed or foreign page cursor.
var ErrInvalidCursor = errors.New("invalid cursor")

// ReportMetadata indexes one exported report.
type ReportMetadata struct {
	DashboardID string
	ReportID    string
	S3Key       string
	ContentType string
	SizeBytes   int64
	Sites       []string
	RangeStart  time.Time
	RangeEnd    time.Time
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ReportListQuery selects reports of one dashboard, newest first.
type ReportListQuery struct {
	DashboardID string
	Limit       int
	Cursor      string
}

// ReportListPage is one page of results and the cursor of the next page.
type ReportListPage struct {
	Items      []ReportMetadata
	NextCursor string
}

// ReportMetadataRepository is the report index.
type ReportMetadataRepository interface {
	Put(ctx context.Context, record ReportMetadata) error
	ListByDashboard(ctx context.Context, query ReportListQuery) (ReportListPage, error)
}
