package driving

import "context"

// IngestResult summarises one ingested source.
type IngestResult struct {
	SourceID string `json:"sourceId"`
	Sections int    `json:"sections"`
	Terms    int    `json:"terms"`
}

// IngestService turns source documents into grouped index items.
type IngestService interface {
	// IngestSource parses, segments, embeds and groups a source document.
	// Re-ingesting a source drops units that are gone and keeps the review
	// state of units whose content is unchanged.
	IngestSource(ctx context.Context, sourceID, text string) (*IngestResult, error)

	// RemoveSource deletes every item that came from a source.
	RemoveSource(ctx context.Context, sourceID string) (int, error)
}
