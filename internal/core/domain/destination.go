package domain

import "time"

// DestinationDocument is a document being assembled from source content.
type DestinationDocument struct {
	// URI identifies the document, typically a file path.
	URI string `json:"uri"`

	Title string `json:"title,omitempty"`

	// Unsaved marks a document that has not been written to disk yet.
	Unsaved bool `json:"unsaved"`

	Tree *Node `json:"tree"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the document.
func (d DestinationDocument) Clone() DestinationDocument {
	out := d
	out.Tree = d.Tree.Clone()
	return out
}

// OutlineEntry is one unit of the destination outline.
type OutlineEntry struct {
	Path          Path           `json:"path"`
	Type          BlockType      `json:"type"`
	Content       string         `json:"content"`
	ParentHeading string         `json:"parentHeading,omitempty"`
	Children      []OutlineEntry `json:"children,omitempty"`
}
