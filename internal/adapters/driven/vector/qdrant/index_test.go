package qdrant

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

func TestPointID(t *testing.T) {
	id := uuid.New().String()

	assert.Equal(t, id, pointID(id).GetUuid())
	assert.Equal(t, pointID("s1").GetUuid(), pointID("s1").GetUuid())
	assert.NotEqual(t, pointID("s1").GetUuid(), pointID("s2").GetUuid())
	_, err := uuid.Parse(pointID("s1").GetUuid())
	assert.NoError(t, err)
}

func TestToPointFromPayload_RoundTrip(t *testing.T) {
	item := storagetest.Term("t1", "a.md", "cache", 1, 0.5)
	item.Metadata.GroupID = "g1"

	point, err := toPoint(item, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), payloadInt(point.GetPayload(), payloadSeq))
	assert.Equal(t, "term", point.GetPayload()[payloadContentType].GetStringValue())

	got, err := fromPayload(point.GetPayload(), point.GetVectors().GetVector().GetData())

	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestFromPayload_MissingID(t *testing.T) {
	_, err := fromPayload(nil, nil)

	assert.Error(t, err)
}

func TestContentTypeFilter(t *testing.T) {
	assert.Nil(t, contentTypeFilter(""))

	f := contentTypeFilter(domain.ContentTypeSection)

	require.Len(t, f.GetMust(), 1)
	field := f.GetMust()[0].GetField()
	assert.Equal(t, payloadContentType, field.GetKey())
	assert.Equal(t, "section", field.GetMatch().GetKeyword())
}

func TestNewVectorIndex_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing host", Config{Collection: "c", Dimensions: 8}},
		{"missing collection", Config{Host: "localhost", Dimensions: 8}},
		{"missing dimensions", Config{Host: "localhost", Collection: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVectorIndex(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// TestVectorIndex_Integration runs against a live server when
// DOCMERGE_QDRANT_HOST is set.
func TestVectorIndex_Integration(t *testing.T) {
	host := os.Getenv("DOCMERGE_QDRANT_HOST")
	if host == "" {
		t.Skip("DOCMERGE_QDRANT_HOST not set")
	}

	storagetest.RunVectorIndex(t, func(t *testing.T) driven.VectorIndex {
		idx, err := NewVectorIndex(context.Background(), Config{
			Host:           host,
			Collection:     "docmerge_test_" + uuid.NewString()[:8],
			Dimensions:     3,
			ConnectTimeout: 5 * time.Second,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = idx.Reset(context.Background())
			_ = idx.Close()
		})
		return idx
	})
}
