package domain

// ContentType discriminates items stored in the vector index.
type ContentType string

// Index content types.
const (
	ContentTypeSection ContentType = "section"
	ContentTypeTerm    ContentType = "term"
)

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	return c == ContentTypeSection || c == ContentTypeTerm
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// SectionMetadata holds fields specific to embedded content sections.
type SectionMetadata struct {
	BlockType BlockType `json:"blockType"`

	// Text is the plain text of the block, used for embedding.
	Text string `json:"text,omitempty"`

	ParentHeading string `json:"parentHeading,omitempty"`
	HeadingDepth  int    `json:"headingDepth,omitempty"`
	Path          Path   `json:"path,omitempty"`
	StartLine     int    `json:"startLine"`
	EndLine       int    `json:"endLine"`
}

// TermMetadata holds fields specific to extracted glossary terms.
type TermMetadata struct {
	Term       string            `json:"term"`
	Definition string            `json:"definition"`
	Confidence float64           `json:"confidence"`
	Pattern    ExtractionPattern `json:"pattern"`

	ParentHeading string `json:"parentHeading,omitempty"`
}

// ItemMetadata is the metadata stored with every index item.
// Exactly one of Section or Term is set, matching ContentType.
type ItemMetadata struct {
	ContentType ContentType `json:"contentType"`

	// Content is the raw markdown of a section, or "term: definition" for terms.
	Content string `json:"content"`

	SourceID   string `json:"sourceId"`
	IsResolved bool   `json:"isResolved"`
	IsPopped   bool   `json:"isPopped"`

	// GroupID is the similarity group; empty means ungrouped.
	GroupID string `json:"similarityGroupId,omitempty"`

	Section *SectionMetadata `json:"section,omitempty"`
	Term    *TermMetadata    `json:"term,omitempty"`

	// Extra is reserved for fields unknown to this version.
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m ItemMetadata) Clone() ItemMetadata {
	out := m
	if m.Section != nil {
		s := *m.Section
		s.Path = m.Section.Path.Clone()
		out.Section = &s
	}
	if m.Term != nil {
		t := *m.Term
		out.Term = &t
	}
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// MetadataPatch is a partial metadata update. Nil fields are left unchanged.
type MetadataPatch struct {
	IsResolved *bool
	IsPopped   *bool

	// GroupID set to a pointer to "" removes the item from its group.
	GroupID *string

	Term *TermMetadata
}

// Apply returns a copy of m with the patch applied.
func (p MetadataPatch) Apply(m ItemMetadata) ItemMetadata {
	out := m.Clone()
	if p.IsResolved != nil {
		out.IsResolved = *p.IsResolved
	}
	if p.IsPopped != nil {
		out.IsPopped = *p.IsPopped
	}
	if p.GroupID != nil {
		out.GroupID = *p.GroupID
	}
	if p.Term != nil {
		t := *p.Term
		out.Term = &t
		out.Content = t.Term + ": " + t.Definition
	}
	return out
}

// IndexItem is an embedded item stored in the vector index.
type IndexItem struct {
	ID       string
	Vector   []float32
	Metadata ItemMetadata
}

// Clone returns a deep copy of the item.
func (i IndexItem) Clone() IndexItem {
	out := i
	if i.Vector != nil {
		out.Vector = append([]float32(nil), i.Vector...)
	}
	out.Metadata = i.Metadata.Clone()
	return out
}

// HasGroup returns true if the item is assigned to a similarity group.
func (i IndexItem) HasGroup() bool {
	return i.Metadata.GroupID != ""
}

// BoolPtr returns a pointer to b, for building patches.
func BoolPtr(b bool) *bool {
	return &b
}

// StringPtr returns a pointer to s, for building patches.
func StringPtr(s string) *string {
	return &s
}
