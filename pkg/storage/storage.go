// Package storage is the object storage used as the artifact cache.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore abstracts the three operations the cache needs.
type ObjectStore interface {
	// Exists reports whether an object is stored under key. A missing object
	// is (false, nil); any other failure is returned as an error.
	Exists(ctx context.Context, key string) (bool, error)
	// Put stores size bytes read from body under key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PresignGet returns a URL granting read access to key until expiry elapses.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Observer receives the duration and outcome of every store call.
type Observer interface {
	RecordStorage(operation string, d time.Duration, err error)
}
