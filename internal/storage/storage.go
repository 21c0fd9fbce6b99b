// Package storage defines the object store the uploader writes file bytes to.
// Swap implementations by changing the concrete type injected at startup:
// MinioStorage works with any S3-compatible provider, S3Storage talks to AWS
// through the official SDK.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for writing objects.
type Storage interface {
	// Upload streams data to the store under the given key, replacing any
	// object already stored there. size is the exact byte count or -1.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
