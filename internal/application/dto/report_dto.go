package dto

import "time"

// ReportDTO describes one exported dashboard report.
type ReportDTO struct {
	ReportID    string    `json:"report_id"`
	DashboardID string    `json:"dashboard_id"`
	S3Key       string    `json:"s3_key"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Sites       []string  `json:"sites"`
	RangeStart  time.Time `json:"range_start"`
	RangeEnd    time.Time `json:"range_end"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportListDTO is one page of reports.
type ReportListDTO struct {
	Items      []ReportDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
