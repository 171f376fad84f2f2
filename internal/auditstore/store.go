// Package auditstore persists audit records as JSON documents in object
// storage and answers queries over the whole collection.
//
// The collection is small enough that readers list and decode every
// document; there is no index. Records are append-only.
package auditstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"qualityaudit/internal/audit"
	obs "qualityaudit/internal/observability/types"
	"qualityaudit/internal/storage/types"
)

const recordContentType = "application/json"

// RecordStore reads and writes audit records in a single bucket under a
// common key prefix.
type RecordStore struct {
	storage types.ObjectStorage
	bucket  string
	prefix  string
	logger  obs.Logger
	metrics obs.Metrics
}

// NewRecordStore creates a record store over the given object storage.
func NewRecordStore(storage types.ObjectStorage, bucket, prefix string, logger obs.Logger, metrics obs.Metrics) *RecordStore {
	return &RecordStore{
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger,
		metrics: metrics,
	}
}

// Append stores a new record under its own name. Names carry a random
// suffix, so Append never overwrites an existing record.
func (s *RecordStore) Append(ctx context.Context, record *audit.Record) error {
	data, err := record.Encode()
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", record.Name, err)
	}

	key := s.prefix + record.Name
	metadata := types.ObjectMetadata{
		ContentType: recordContentType,
		UserMetadata: map[string]string{
			"entity-id": record.EntityID,
		},
	}
	if err := s.storage.Put(ctx, s.bucket, key, bytes.NewReader(data), metadata); err != nil {
		s.metrics.RecordError("append", "storage")
		return fmt.Errorf("storing record %s: %w", record.Name, err)
	}

	s.metrics.RecordDocumentSize("record", int64(len(data)))
	s.metrics.RecordSuccess("append")
	s.logger.Info(ctx, "audit record stored", obs.Fields{
		"record_name": record.Name,
		"entity_id":   record.EntityID,
		"size_bytes":  len(data),
	})
	return nil
}

// Load returns every decodable record in the collection. Documents that
// fail to decode are logged and skipped; a reporting run is not aborted by
// one corrupt document. Connectivity failures are returned as-is.
func (s *RecordStore) Load(ctx context.Context) ([]*audit.Record, error) {
	infos, err := s.storage.List(ctx, s.bucket, s.prefix)
	if err != nil {
		s.metrics.RecordError("load", "storage")
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]*audit.Record, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		record, err := s.loadOne(ctx, info.Key)
		if err != nil {
			if isConnectivity(err) {
				return nil, err
			}
			s.metrics.RecordError("load", "parse")
			s.logger.Warn(ctx, "skipping unreadable record", obs.Fields{
				"key":   info.Key,
				"error": err.Error(),
			})
			continue
		}
		records = append(records, record)
	}

	s.metrics.RecordSuccess("load")
	return records, nil
}

// Get returns a single record by name.
func (s *RecordStore) Get(ctx context.Context, name string) (*audit.Record, error) {
	return s.loadOne(ctx, s.prefix+name)
}

func (s *RecordStore) loadOne(ctx context.Context, key string) (*audit.Record, error) {
	reader, err := s.storage.Get(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}

	return audit.Decode(strings.TrimPrefix(key, s.prefix), data)
}

func isConnectivity(err error) bool {
	return errors.Is(err, types.ErrUnreachable)
}
