package domain

// ExtractionPattern names the rule that produced a glossary term.
type ExtractionPattern string

// Structural patterns match document layout.
const (
	PatternBoldDefinition ExtractionPattern = "bold-definition"
	PatternColonList      ExtractionPattern = "colon-list"
	PatternTableRow       ExtractionPattern = "table-row"
)

// Linguistic patterns match sentence forms.
const (
	PatternDefinedAs ExtractionPattern = "defined-as"
	PatternIsA       ExtractionPattern = "is-a"
	PatternAcronym   ExtractionPattern = "acronym"
)

// IsStructural returns true for layout-based patterns.
func (p ExtractionPattern) IsStructural() bool {
	switch p {
	case PatternBoldDefinition, PatternColonList, PatternTableRow:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ExtractionPattern) String() string {
	return string(p)
}

// GlossaryTerm is an extracted term/definition pair.
type GlossaryTerm struct {
	ID            string            `json:"id"`
	Term          string            `json:"term"`
	Definition    string            `json:"definition"`
	Confidence    float64           `json:"confidence"`
	Pattern       ExtractionPattern `json:"pattern"`
	SourceID      string            `json:"sourceId"`
	ParentHeading string            `json:"parentHeading,omitempty"`
	GroupID       string            `json:"groupId,omitempty"`
	IsResolved    bool              `json:"isResolved"`
	IsPopped      bool              `json:"isPopped"`
}

// Content returns the text embedded for the term.
func (t GlossaryTerm) Content() string {
	return t.Term + ": " + t.Definition
}

// TermFromItem projects an index item onto a GlossaryTerm.
func TermFromItem(item IndexItem) GlossaryTerm {
	t := GlossaryTerm{
		ID:         item.ID,
		SourceID:   item.Metadata.SourceID,
		GroupID:    item.Metadata.GroupID,
		IsResolved: item.Metadata.IsResolved,
		IsPopped:   item.Metadata.IsPopped,
	}
	if tm := item.Metadata.Term; tm != nil {
		t.Term = tm.Term
		t.Definition = tm.Definition
		t.Confidence = tm.Confidence
		t.Pattern = tm.Pattern
		t.ParentHeading = tm.ParentHeading
	}
	return t
}
