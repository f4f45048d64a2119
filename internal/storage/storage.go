// Package storage wraps the S3-compatible object store used to archive CSV exports.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"
)

// ErrDisabled is returned when archiving is requested but no object store is configured.
var ErrDisabled = errors.New("object storage is not configured")

// PutObjectOptions describes an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	StoredAt    time.Time
}

// Storage is the subset of object storage the export archive needs.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ExportKey is the object key of a tenant's archived export file.
func ExportKey(userID, fileName string) string {
	return path.Join("exports", userID, path.Base(fileName))
}
