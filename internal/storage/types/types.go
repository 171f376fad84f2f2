// Package types defines the object storage port the record store is built
// on. Audit records are write-once JSON documents, so the port is
// deliberately narrow: no update or delete operations.
package types

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the contract for the audit record bucket.
type ObjectStorage interface {
	// Put stores an object. Records are append-only: callers use fresh
	// keys and never overwrite.
	Put(ctx context.Context, bucket, key string, reader io.Reader, metadata ObjectMetadata) error

	// Get retrieves an object. Returns ErrObjectNotFound when the key
	// does not exist.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Exists checks whether an object exists.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// List returns the objects under a prefix, in the store's own
	// listing order.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// ObjectMetadata describes an object being stored.
type ObjectMetadata struct {
	ContentType  string
	UserMetadata map[string]string
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}
