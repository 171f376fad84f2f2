// Package mocks provides storage test doubles: a testify mock and an
// in-memory implementation for exercising the record store end to end.
package mocks

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"qualityaudit/internal/storage/types"
)

// MockObjectStorage is a testify mock of the ObjectStorage interface.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	args := m.Called(ctx, bucket, key, reader, metadata)
	return args.Error(0)
}

func (m *MockObjectStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) List(ctx context.Context, bucket, prefix string) ([]types.ObjectInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ObjectInfo), args.Error(1)
}

// MemoryStorage is a thread-safe in-memory ObjectStorage.
// FailWith, when set, makes every operation return that error, simulating an
// unreachable store.
type MemoryStorage struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	FailWith error
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[s.path(bucket, key)] = data
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[s.path(bucket, key)]
	if !ok {
		return nil, types.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if s.FailWith != nil {
		return false, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[s.path(bucket, key)]
	return ok, nil
}

func (s *MemoryStorage) List(ctx context.Context, bucket, prefix string) ([]types.ObjectInfo, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []types.ObjectInfo
	dir := bucket + "/"
	for path, data := range s.objects {
		if !strings.HasPrefix(path, dir) {
			continue
		}
		key := strings.TrimPrefix(path, dir)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, types.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: time.Now(),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Seed plants raw bytes under a key, bypassing Put. Useful for placing
// malformed documents that the production write path would never produce.
func (s *MemoryStorage) Seed(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[s.path(bucket, key)] = data
}

func (s *MemoryStorage) path(bucket, key string) string {
	return bucket + "/" + key
}
