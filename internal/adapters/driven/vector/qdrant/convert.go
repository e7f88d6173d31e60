package qdrant

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// pointID maps an item id to a Qdrant point id.
func pointID(id string) *qdrant.PointId {
	if u, err := uuid.Parse(id); err == nil {
		return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: u.String()}}
	}
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{
		Uuid: uuid.NewSHA1(pointNamespace, []byte(id)).String(),
	}}
}

func pointsSelector(id string) *qdrant.PointsSelector {
	return &qdrant.PointsSelector{
		PointsSelectorOneOf: &qdrant.PointsSelector_Points{
			Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{pointID(id)}},
		},
	}
}

// toPoint encodes an item and its insertion sequence as a point.
func toPoint(item domain.IndexItem, seq int64) (*qdrant.PointStruct, error) {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return nil, fmt.Errorf("qdrant: marshal metadata: %w", err)
	}
	return &qdrant.PointStruct{
		Id: pointID(item.ID),
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{
				Vector: &qdrant.Vector{Data: item.Vector},
			},
		},
		Payload: map[string]*qdrant.Value{
			payloadItemID:      stringValue(item.ID),
			payloadContentType: stringValue(string(item.Metadata.ContentType)),
			payloadSeq:         {Kind: &qdrant.Value_IntegerValue{IntegerValue: seq}},
			payloadMetadata:    stringValue(string(metadataJSON)),
		},
	}, nil
}

// fromPayload decodes an item from a point payload.
func fromPayload(payload map[string]*qdrant.Value, vector []float32) (domain.IndexItem, error) {
	item := domain.IndexItem{
		ID:     payload[payloadItemID].GetStringValue(),
		Vector: vector,
	}
	if item.ID == "" {
		return item, fmt.Errorf("qdrant: point without %s payload", payloadItemID)
	}
	if err := json.Unmarshal([]byte(payload[payloadMetadata].GetStringValue()), &item.Metadata); err != nil {
		return item, fmt.Errorf("qdrant: unmarshal metadata of %s: %w", item.ID, err)
	}
	return item, nil
}

// contentTypeFilter matches points of one content type; "" matches all.
func contentTypeFilter(contentType domain.ContentType) *qdrant.Filter {
	if contentType == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: payloadContentType,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{Keyword: string(contentType)},
					},
				},
			},
		}},
	}
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	return payload[key].GetIntegerValue()
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func boolPtr(b bool) *bool { return &b }

func uint32Ptr(n uint32) *uint32 { return &n }
