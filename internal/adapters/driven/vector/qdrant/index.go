// Package qdrant provides a driven.VectorIndex backed by a Qdrant server.
//
// Each index item is one point. Non-UUID item ids are mapped to name-based
// UUIDs; the original id, content type, insertion sequence and the JSON
// encoded metadata travel in the point payload.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Payload keys.
const (
	payloadItemID      = "item_id"
	payloadContentType = "content_type"
	payloadSeq         = "seq"
	payloadMetadata    = "metadata"
)

// scrollPageSize bounds the points fetched per scroll request.
const scrollPageSize = 256

// pointNamespace scopes the UUIDs minted for non-UUID item ids.
var pointNamespace = uuid.MustParse("0b7e3c1a-5f4d-4a2b-9c8e-7d6f5a4b3c2d")

// Config holds configuration for the Qdrant vector index.
type Config struct {
	Host       string
	Port       int
	Collection string

	// Dimensions is the vector size of the collection.
	Dimensions int

	// ConnectTimeout bounds the initial connection retries (default: 10s).
	ConnectTimeout time.Duration
}

// VectorIndex stores index items as points in a Qdrant collection.
type VectorIndex struct {
	conn        *grpc.ClientConn
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	cfg         Config
	seq         atomic.Int64
}

// NewVectorIndex connects to Qdrant and ensures the collection exists.
// Connection attempts back off exponentially until ConnectTimeout elapses.
func NewVectorIndex(ctx context.Context, cfg Config) (*VectorIndex, error) {
	if cfg.Host == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: host and collection are required: %w", domain.ErrInvalidInput)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions must be positive: %w", domain.ErrInvalidInput)
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", address, err)
	}

	v := &VectorIndex{
		conn:        conn,
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		cfg:         cfg,
	}
	v.seq.Store(time.Now().UnixNano())

	retryConfig := backoff.NewExponentialBackOff()
	retryConfig.MaxElapsedTime = cfg.ConnectTimeout
	operation := func() error {
		_, err := v.collections.List(ctx, &qdrant.ListCollectionsRequest{})
		if err != nil {
			logger.Debug("qdrant: %s not ready: %v", address, err)
		}
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(retryConfig, ctx)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: qdrant at %s: %w", domain.ErrVectorIndexUnavailable, address, err)
	}

	if err := v.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return v, nil
}

func (v *VectorIndex) ensureCollection(ctx context.Context) error {
	resp, err := v.collections.CollectionExists(ctx, &qdrant.CollectionExistsRequest{
		CollectionName: v.cfg.Collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	_, err = v.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: v.cfg.Collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(v.cfg.Dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", v.cfg.Collection, err)
	}

	// content_type filters every neighbour query
	_, err = v.points.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: v.cfg.Collection,
		FieldName:      payloadContentType,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("qdrant: index %s: %w", payloadContentType, err)
	}
	logger.Info("qdrant: created collection %s (%d dimensions)", v.cfg.Collection, v.cfg.Dimensions)
	return nil
}

// Insert adds a new item.
func (v *VectorIndex) Insert(ctx context.Context, item domain.IndexItem) error {
	existing, err := v.retrieve(ctx, item.ID, false)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrAlreadyExists)
	}
	return v.write(ctx, item, v.seq.Add(1))
}

// Upsert adds or replaces an item. A replaced item keeps its position.
func (v *VectorIndex) Upsert(ctx context.Context, item domain.IndexItem) error {
	existing, err := v.retrieve(ctx, item.ID, false)
	if err != nil {
		return err
	}
	seq := v.seq.Add(1)
	if existing != nil {
		seq = payloadInt(existing.GetPayload(), payloadSeq)
	}
	return v.write(ctx, item, seq)
}

func (v *VectorIndex) write(ctx context.Context, item domain.IndexItem, seq int64) error {
	point, err := toPoint(item, seq)
	if err != nil {
		return err
	}
	_, err = v.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: v.cfg.Collection,
		Wait:           boolPtr(true),
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %s: %w", item.ID, err)
	}
	return nil
}

// Query returns up to topK items closest to vector, optionally filtered by content type.
func (v *VectorIndex) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	contentType domain.ContentType,
) ([]driven.VectorHit, error) {
	if topK <= 0 {
		return nil, nil
	}
	resp, err := v.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: v.cfg.Collection,
		Vector:         vector,
		Limit:          uint64(topK),
		Filter:         contentTypeFilter(contentType),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		item, err := fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData())
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.VectorHit{Item: item, Score: float64(p.GetScore())})
	}
	return hits, nil
}

// Get retrieves an item by ID.
func (v *VectorIndex) Get(ctx context.Context, id string) (*domain.IndexItem, error) {
	p, err := v.retrieve(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	item, err := fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData())
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateMetadata applies a partial metadata update.
func (v *VectorIndex) UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error {
	p, err := v.retrieve(ctx, id, false)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	item, err := fromPayload(p.GetPayload(), nil)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(patch.Apply(item.Metadata))
	if err != nil {
		return fmt.Errorf("qdrant: marshal metadata: %w", err)
	}

	_, err = v.points.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: v.cfg.Collection,
		Wait:           boolPtr(true),
		Payload: map[string]*qdrant.Value{
			payloadMetadata: stringValue(string(metadataJSON)),
		},
		PointsSelector: pointsSelector(id),
	})
	if err != nil {
		return fmt.Errorf("qdrant: update %s: %w", id, err)
	}
	return nil
}

// ListAll returns every item in insertion order.
func (v *VectorIndex) ListAll(ctx context.Context) ([]domain.IndexItem, error) {
	type ordered struct {
		seq  int64
		item domain.IndexItem
	}
	var all []ordered
	var offset *qdrant.PointId
	for {
		resp, err := v.points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: v.cfg.Collection,
			Offset:         offset,
			Limit:          uint32Ptr(scrollPageSize),
			WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll: %w", err)
		}
		for _, p := range resp.GetResult() {
			item, err := fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData())
			if err != nil {
				return nil, err
			}
			all = append(all, ordered{seq: payloadInt(p.GetPayload(), payloadSeq), item: item})
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	items := make([]domain.IndexItem, len(all))
	for i, o := range all {
		items[i] = o.item
	}
	return items, nil
}

// Delete removes an item.
func (v *VectorIndex) Delete(ctx context.Context, id string) error {
	_, err := v.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: v.cfg.Collection,
		Wait:           boolPtr(true),
		Points:         pointsSelector(id),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete %s: %w", id, err)
	}
	return nil
}

// Reset drops and recreates the collection.
func (v *VectorIndex) Reset(ctx context.Context) error {
	_, err := v.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: v.cfg.Collection})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("qdrant: drop collection: %w", err)
	}
	return v.ensureCollection(ctx)
}

// Close closes the gRPC connection.
func (v *VectorIndex) Close() error {
	return v.conn.Close()
}

// retrieve fetches a point by item id; a missing point returns nil.
func (v *VectorIndex) retrieve(ctx context.Context, id string, withVector bool) (*qdrant.RetrievedPoint, error) {
	resp, err := v.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: v.cfg.Collection,
		Ids:            []*qdrant.PointId{pointID(id)},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: withVector}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: get %s: %w", id, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, nil
	}
	return resp.GetResult()[0], nil
}
