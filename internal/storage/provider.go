// Package storage selects and constructs the object storage adapter holding
// the audit record bucket.
package storage

import (
	"fmt"

	"qualityaudit/internal/config"
	"qualityaudit/internal/observability"
	"qualityaudit/internal/storage/adapters/fs"
	"qualityaudit/internal/storage/adapters/s3"
	"qualityaudit/internal/storage/types"
)

// Re-exported so most callers only import this package.
type (
	ObjectStorage  = types.ObjectStorage
	ObjectMetadata = types.ObjectMetadata
	ObjectInfo     = types.ObjectInfo
)

var (
	ErrObjectNotFound = types.ErrObjectNotFound
	ErrUnreachable    = types.ErrUnreachable
)

// New creates the object storage implementation selected by configuration.
// This is the only place that knows about concrete adapters.
func New(cfg *config.Config, logger observability.Logger, metrics observability.Metrics) (ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "s3":
		return s3.NewClient(&cfg.Storage, logger, metrics)
	case "fs":
		return fs.NewStorage(cfg.Storage.FS.BasePath, logger, metrics)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}
