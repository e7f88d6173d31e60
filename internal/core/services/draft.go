package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure DraftService implements the interface.
var _ driving.DraftService = (*DraftService)(nil)

// Generation parameters for merge drafts.
const (
	draftMaxTokens   = 2048
	draftTemperature = 0.2
)

// DraftService asks a language model to merge the members of a group.
type DraftService struct {
	review *ReviewService
	llm    driven.LLMService
}

// NewDraftService creates a draft service. A nil llm makes every draft fail
// with domain.ErrModelUnavailable.
func NewDraftService(review *ReviewService, llm driven.LLMService) *DraftService {
	return &DraftService{
		review: review,
		llm:    llm,
	}
}

// DraftMerge merges the unresolved members of groupID into one passage.
func (s *DraftService) DraftMerge(ctx context.Context, groupID string) (*domain.Draft, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: no llm provider configured, set llm.provider", domain.ErrModelUnavailable)
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", domain.ErrInvalidInput)
	}

	members, err := s.review.membersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: group %s", domain.ErrNotFound, groupID)
	}

	ct := members[0].Metadata.ContentType
	var prompt string
	if ct == domain.ContentTypeTerm {
		prompt = termMergePrompt(members)
	} else {
		prompt = sectionMergePrompt(members)
	}

	logger.Debug("draft: merging %d %ss of group %s with %s", len(members), ct, groupID, s.llm.ModelName())
	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   draftMaxTokens,
		Temperature: draftTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("draft group %s: %w", groupID, err)
	}

	text := stripCodeFence(out)
	if text == "" {
		return nil, fmt.Errorf("draft group %s: model returned no text", groupID)
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return &domain.Draft{
		GroupID:     groupID,
		ContentType: ct,
		MemberIDs:   ids,
		Markdown:    text,
		Model:       s.llm.ModelName(),
	}, nil
}

func sectionMergePrompt(members []domain.IndexItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %d markdown passages from different documents say nearly the same thing.\n", len(members))
	b.WriteString("Merge them into one passage that keeps every distinct fact and drops repetition.\n")
	b.WriteString("Keep the markdown style of the originals. Reply with the merged markdown only.\n")
	for i, m := range members {
		fmt.Fprintf(&b, "\n--- Passage %d (source: %s", i+1, m.Metadata.SourceID)
		if sec := m.Metadata.Section; sec != nil && sec.ParentHeading != "" {
			fmt.Fprintf(&b, ", heading: %s", sec.ParentHeading)
		}
		b.WriteString(") ---\n")
		b.WriteString(strings.TrimSpace(m.Metadata.Content))
		b.WriteString("\n")
	}
	return b.String()
}

func termMergePrompt(members []domain.IndexItem) string {
	var b strings.Builder
	b.WriteString("The following glossary entries define the same term.\n")
	b.WriteString("Write one definition that covers all of them. Reply with a single line ")
	b.WriteString("in the form '- **Term**: definition' and nothing else.\n\n")
	for _, m := range members {
		if t := m.Metadata.Term; t != nil {
			fmt.Fprintf(&b, "- **%s**: %s\n", t.Term, t.Definition)
			continue
		}
		fmt.Fprintf(&b, "- %s\n", m.Metadata.Content)
	}
	return b.String()
}

// stripCodeFence removes one fence wrapping the whole reply.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return s
	}
	return strings.TrimSpace(body[nl+1:])
}
