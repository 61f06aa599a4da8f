// Package objstore provides durable object storage for moderation state.
package objstore

import (
	"io"
	"time"
)

// Config for the object storage client.
type Config struct {
	Endpoint        string // e.g. "minio:9000" (no scheme)
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string // defaults to "us-east-1"
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ObjectStore is the storage seam the moderation services depend on.
type ObjectStore interface {
	// PutObject uploads an object, creating the bucket if needed.
	PutObject(bucket, object string, data io.Reader, size int64) error

	// GetObject downloads an object in full.
	GetObject(bucket, object string) ([]byte, error)

	// ListObjects returns objects under a prefix, newest first.
	ListObjects(bucket, prefix string) ([]ObjectInfo, error)
}
