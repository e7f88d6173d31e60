package review

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
)

// MockReviewService implements the review calls the view makes.
type MockReviewService struct {
	driving.ReviewService

	Groups      []domain.SimilarityGroup
	TermGroups  []domain.TermGroup
	Unique      []domain.SourceSection
	UniqueTerms []domain.GlossaryTerm
	Err         error

	Resolved [][]string
	Popped   []string
	Rejected []string
}

func (m *MockReviewService) GetSimilarityGroups(_ context.Context) ([]domain.SimilarityGroup, error) {
	return m.Groups, m.Err
}

func (m *MockReviewService) GetTermGroups(_ context.Context) ([]domain.TermGroup, error) {
	return m.TermGroups, m.Err
}

func (m *MockReviewService) GetUniqueSections(_ context.Context) ([]domain.SourceSection, error) {
	return m.Unique, m.Err
}

func (m *MockReviewService) GetUniqueTerms(_ context.Context) ([]domain.GlossaryTerm, error) {
	return m.UniqueTerms, m.Err
}

func (m *MockReviewService) MarkManyResolved(_ context.Context, ids []string) error {
	m.Resolved = append(m.Resolved, ids)
	return m.Err
}

func (m *MockReviewService) PopFromGroup(_ context.Context, id string) error {
	m.Popped = append(m.Popped, id)
	return m.Err
}

func (m *MockReviewService) RejectTerm(_ context.Context, id string) error {
	m.Rejected = append(m.Rejected, id)
	return m.Err
}

func sampleService() *MockReviewService {
	return &MockReviewService{
		Groups: []domain.SimilarityGroup{{
			ID: "g1",
			Members: []domain.SourceSection{
				{ID: "s1", SourceID: "a.md", Content: "A cache stores data.", BlockType: domain.BlockParagraph},
				{ID: "s2", SourceID: "b.md", Content: "A cache keeps data.", BlockType: domain.BlockParagraph},
			},
		}},
		TermGroups: []domain.TermGroup{{
			ID: "tg",
			Members: []domain.GlossaryTerm{
				{ID: "t1", Term: "TTL", Definition: "Time to live", SourceID: "a.md"},
				{ID: "t2", Term: "TTL", Definition: "Time-to-live", SourceID: "b.md"},
			},
		}},
		Unique: []domain.SourceSection{{ID: "s3", SourceID: "a.md", Content: "Deploy on Tuesday."}},
	}
}

// run executes cmd and feeds the resulting message back into the view.
func run(t *testing.T, v *View, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_NilParams(t *testing.T) {
	v := NewView(nil, nil, nil, ModeGroups)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_InitLoadsGroups(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeGroups)
	v.SetDimensions(140, 30)

	msg := run(t, v, v.Init())

	assert.IsType(t, messages.GroupsLoaded{}, msg)
	require.Len(t, v.Entries(), 2)
	assert.Equal(t, "g1", v.Entries()[0].GroupID)
	assert.Contains(t, v.View(), "Similar sections")
	assert.Contains(t, v.View(), "1 groups (sections)")
}

func TestView_InitLoadsUnique(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeUnique)
	v.SetDimensions(140, 30)

	run(t, v, v.Init())

	require.Len(t, v.Entries(), 1)
	assert.Empty(t, v.Entries()[0].GroupID)
	assert.Contains(t, v.View(), "Deploy on Tuesday.")
}

func TestView_ToggleTerms(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	_, cmd := v.Update(key("t"))
	run(t, v, cmd)

	assert.True(t, v.Terms())
	assert.Equal(t, "Similar terms", v.Title())
	require.Len(t, v.Entries(), 2)
	assert.Equal(t, "TTL: Time to live", v.Entries()[0].Content)
}

func TestView_IgnoresStaleLoad(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	v.Update(messages.GroupsLoaded{Terms: true, TermGroups: []domain.TermGroup{{ID: "x"}}})
	v.Update(messages.UniqueLoaded{Sections: []domain.SourceSection{{ID: "u"}}})

	assert.Len(t, v.Entries(), 2)
}

func TestView_ResolveSelected(t *testing.T) {
	svc := sampleService()
	v := NewView(nil, nil, svc, ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(key("r"))
	msg := run(t, v, cmd)

	assert.Equal(t, messages.ItemsResolved{IDs: []string{"s2"}}, msg)
	assert.Equal(t, [][]string{{"s2"}}, svc.Resolved)
	assert.Contains(t, v.View(), "Resolved 1")
}

func TestView_ResolveGroup(t *testing.T) {
	svc := sampleService()
	v := NewView(nil, nil, svc, ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	_, cmd := v.Update(key("R"))
	run(t, v, cmd)

	assert.Equal(t, [][]string{{"s1", "s2"}}, svc.Resolved)
}

func TestView_PopOnlyInGroups(t *testing.T) {
	svc := sampleService()
	v := NewView(nil, nil, svc, ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	_, cmd := v.Update(key("p"))
	run(t, v, cmd)
	assert.Equal(t, []string{"s1"}, svc.Popped)

	unique := NewView(nil, nil, svc, ModeUnique)
	run(t, unique, unique.Init())
	_, cmd = unique.Update(key("p"))
	assert.Nil(t, cmd)
}

func TestView_RejectOnlyForTerms(t *testing.T) {
	svc := sampleService()
	v := NewView(nil, nil, svc, ModeGroups)
	run(t, v, v.Init())

	_, cmd := v.Update(key("x"))
	assert.Nil(t, cmd)

	_, cmd = v.Update(key("t"))
	run(t, v, cmd)
	_, cmd = v.Update(key("x"))
	run(t, v, cmd)

	assert.Equal(t, []string{"t1"}, svc.Rejected)
}

func TestView_ActionErrorIsShown(t *testing.T) {
	svc := sampleService()
	v := NewView(nil, nil, svc, ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())
	svc.Err = domain.ErrNotFound

	_, cmd := v.Update(key("p"))
	run(t, v, cmd)

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
	assert.Contains(t, v.View(), "Error: not found")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, nil, &MockReviewService{Err: assert.AnError}, ModeUnique)

	run(t, v, v.Init())

	assert.ErrorIs(t, v.Err(), assert.AnError)
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil, nil, ModeGroups)

	msg := run(t, v, v.Init())

	assert.IsType(t, messages.ErrorOccurred{}, msg)
	assert.Error(t, v.Err())
}

func TestView_Filter(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeGroups)
	v.SetDimensions(140, 30)
	run(t, v, v.Init())

	v.Update(key("/"))
	require.True(t, v.filter.Focused())
	v.Update(key("keeps"))
	assert.Equal(t, 1, v.list.Count())
	assert.Contains(t, v.View(), "Filter:")

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.filter.Focused())
	assert.Equal(t, "s2", v.list.SelectedEntry().ID)

	v.Update(key("/"))
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, v.list.Count())
}

func TestView_Navigation(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		view messages.ViewType
	}{
		{"esc returns to menu", tea.KeyMsg{Type: tea.KeyEsc}, messages.ViewMenu},
		{"? opens help", key("?"), messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(nil, nil, sampleService(), ModeGroups)

			_, cmd := v.Update(tt.key)

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.view}, cmd())
		})
	}
}

func TestView_Reset(t *testing.T) {
	v := NewView(nil, nil, sampleService(), ModeGroups)
	run(t, v, v.Init())
	v.list.SetFilter("keeps")
	v.err = assert.AnError

	v.Reset()

	assert.Equal(t, 2, v.list.Count())
	assert.NoError(t, v.Err())
}
