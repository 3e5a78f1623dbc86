package storage

import (
	"context"
	"path"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ReportStorage archives completed session reports in object storage.
type ReportStorage interface {
	// PutObject uploads body under objectKey.
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for an archived object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

// ReportKey is the object key of a session report: reports/<user>/<session>.json
func ReportKey(userID, sessionID string) string {
	return path.Join("reports", userID, sessionID+".json")
}
