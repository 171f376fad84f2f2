// Package fs implements the ObjectStorage port on the local filesystem.
// Used for development and tests where no S3 bucket is available.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"qualityaudit/internal/observability"
	"qualityaudit/internal/storage/types"
)

// Storage implements ObjectStorage using a base directory; each bucket is a
// subdirectory and each object a file.
type Storage struct {
	basePath string
	logger   observability.Logger
	metrics  observability.Metrics
}

// NewStorage creates a filesystem-backed object storage rooted at basePath.
func NewStorage(basePath string, logger observability.Logger, metrics observability.Metrics) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	logger.Info(context.Background(), "filesystem storage initialized", observability.Fields{
		"base_path": basePath,
	})

	return &Storage{
		basePath: basePath,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Put stores an object.
func (s *Storage) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	objectPath := s.objectPath(bucket, key)

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	file, err := os.Create(objectPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	s.metrics.RecordSuccess("storage.fs.put")
	s.metrics.RecordDocumentSize("json", written)
	s.logger.Debug(ctx, "object stored", observability.Fields{
		"bucket": bucket,
		"key":    key,
		"size":   written,
	})

	return nil
}

// Get retrieves an object.
func (s *Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	file, err := os.Open(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return file, nil
}

// Exists checks whether an object exists.
func (s *Storage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := os.Stat(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// List returns the objects under a prefix, sorted by key for a stable
// listing order.
func (s *Storage) List(ctx context.Context, bucket, prefix string) ([]types.ObjectInfo, error) {
	bucketPath := filepath.Join(s.basePath, bucket)

	entries, err := os.ReadDir(bucketPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bucket directory: %w", err)
	}

	var objects []types.ObjectInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, types.ObjectInfo{
			Key:          entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *Storage) objectPath(bucket, key string) string {
	return filepath.Join(s.basePath, bucket, key)
}
