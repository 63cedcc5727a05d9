// Package storage reads objects from S3, Google Cloud Storage or MinIO.
// The service only reads (theme overrides), so the interface is read-only.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the bucket has no object at key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage reads objects by bucket and key.
type Storage interface {
	io.Closer
	// GetObject opens the object. The caller closes the reader.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
}

// ObjectInfo is the metadata returned alongside an object.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
	UpdatedAt   time.Time
}
