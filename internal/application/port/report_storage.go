package port

import (
	"context"
	"time"
)

// ReportObject is a stored report as listed from object storage.
type ReportObject struct {
	Key          string
	URL          string
	SizeBytes    int64
	LastModified time.Time
}

// ReportStorage stores exported dashboard reports as objects.
type ReportStorage interface {
	// PutObject uploads the body and returns a URL for reading it.
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)

	// ListObjects lists up to limit objects under prefix.
	ListObjects(ctx context.Context, prefix string, limit int) ([]ReportObject, error)

	// GetObjectURL returns a fresh read URL for an existing key.
	GetObjectURL(ctx context.Context, key string) (string, error)
}
