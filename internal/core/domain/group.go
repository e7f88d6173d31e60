package domain

// SourceSection is a persisted, embedded content unit as seen by review views.
type SourceSection struct {
	ID            string    `json:"id"`
	SourceID      string    `json:"sourceId"`
	Content       string    `json:"content"`
	BlockType     BlockType `json:"blockType,omitempty"`
	ParentHeading string    `json:"parentHeading,omitempty"`
	Vector        []float32 `json:"-"`
	StartLine     int       `json:"startLine"`
	EndLine       int       `json:"endLine"`
	GroupID       string    `json:"groupId,omitempty"`
	IsResolved    bool      `json:"isResolved"`
	IsPopped      bool      `json:"isPopped"`
}

// SectionFromItem projects an index item onto a SourceSection.
func SectionFromItem(item IndexItem) SourceSection {
	s := SourceSection{
		ID:         item.ID,
		SourceID:   item.Metadata.SourceID,
		Content:    item.Metadata.Content,
		Vector:     item.Vector,
		GroupID:    item.Metadata.GroupID,
		IsResolved: item.Metadata.IsResolved,
		IsPopped:   item.Metadata.IsPopped,
	}
	if sec := item.Metadata.Section; sec != nil {
		s.BlockType = sec.BlockType
		s.ParentHeading = sec.ParentHeading
		s.StartLine = sec.StartLine
		s.EndLine = sec.EndLine
	}
	return s
}

// SimilarityGroup is a set of near-duplicate sections sharing one group id.
type SimilarityGroup struct {
	ID      string          `json:"id"`
	Members []SourceSection `json:"members"`
}

// IsResolved returns true if every member is resolved.
func (g SimilarityGroup) IsResolved() bool {
	for _, m := range g.Members {
		if !m.IsResolved {
			return false
		}
	}
	return true
}

// TermGroup is a set of near-duplicate glossary terms sharing one group id.
type TermGroup struct {
	ID      string         `json:"id"`
	Members []GlossaryTerm `json:"members"`
}

// IsResolved returns true if every member is resolved.
func (g TermGroup) IsResolved() bool {
	for _, m := range g.Members {
		if !m.IsResolved {
			return false
		}
	}
	return true
}
