package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	obsmocks "qualityaudit/internal/observability/mocks"
	"qualityaudit/internal/storage/types"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir(), obsmocks.NopLogger{}, obsmocks.NopMetrics{})
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	err := s.Put(ctx, "audits", "audit_a.json", strings.NewReader(`{"Entity ID":"TKT-1"}`), types.ObjectMetadata{
		ContentType: "application/json",
	})
	require.NoError(t, err)

	reader, err := s.Get(ctx, "audits", "audit_a.json")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Entity ID":"TKT-1"}`, string(data))
}

func TestGetMissing(t *testing.T) {
	s := newStorage(t)

	_, err := s.Get(context.Background(), "audits", "absent.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrObjectNotFound)
}

func TestExists(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "audits", "audit_a.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "audits", "audit_a.json", strings.NewReader("{}"), types.ObjectMetadata{}))

	ok, err = s.Exists(ctx, "audits", "audit_a.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListByPrefix(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	for _, key := range []string{"audit_b.json", "audit_a.json", "other.txt"} {
		require.NoError(t, s.Put(ctx, "audits", key, strings.NewReader("{}"), types.ObjectMetadata{}))
	}

	infos, err := s.List(ctx, "audits", "audit_")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "audit_a.json", infos[0].Key)
	assert.Equal(t, "audit_b.json", infos[1].Key)
}

func TestListMissingBucket(t *testing.T) {
	s := newStorage(t)

	infos, err := s.List(context.Background(), "nothing-here", "audit_")
	require.NoError(t, err)
	assert.Empty(t, infos)
}
