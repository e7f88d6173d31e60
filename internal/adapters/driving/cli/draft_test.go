package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/services"
)

type stubLLM struct {
	reply string
}

func (l stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return l.reply, nil
}
func (l stubLLM) ModelName() string          { return "stub" }
func (l stubLLM) Ping(context.Context) error { return nil }
func (l stubLLM) Close() error               { return nil }

// useDraftLLM wires a draft service backed by llm into the test services.
func useDraftLLM(t *testing.T, llm driven.LLMService) {
	t.Helper()
	review, ok := reviewService.(*services.ReviewService)
	require.True(t, ok)
	draftService = services.NewDraftService(review, llm)
}

func TestDraftCmd_Flags(t *testing.T) {
	assert.Equal(t, "draft [group-id]", draftCmd.Use)
	for _, name := range []string{"into", "at", "apply", "json"} {
		assert.NotNil(t, draftCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "0", draftCmd.Flags().Lookup("at").DefValue)
}

func TestDraftCmd_Prints(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	useDraftLLM(t, stubLLM{reply: "Merged cache paragraph."})
	ingestPair(t)
	groups := listGroups(t)
	require.NotEmpty(t, groups)

	out, err := runCmd(t, "draft", groups[0].ID)

	require.NoError(t, err)
	assert.Equal(t, "Merged cache paragraph.\n", out)
	assert.Len(t, listGroups(t), len(groups), "printing leaves the group open")
}

func TestDraftCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	useDraftLLM(t, stubLLM{reply: "Merged."})
	ingestPair(t)
	group := listGroups(t)[0]

	out, err := runCmd(t, "draft", group.ID, "--json")

	require.NoError(t, err)
	var draft domain.Draft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))
	assert.Equal(t, group.ID, draft.GroupID)
	assert.Len(t, draft.MemberIDs, len(group.Members))
	assert.Equal(t, "stub", draft.Model)
}

func TestDraftCmd_Into(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	useDraftLLM(t, stubLLM{reply: "```markdown\nMerged cache paragraph.\n```"})
	ingestPair(t)
	groups := listGroups(t)
	_, err := runCmd(t, "dest", "create", "out.md")
	require.NoError(t, err)

	out, err := runCmd(t, "draft", groups[0].ID, "--into", "out.md")

	require.NoError(t, err)
	assert.Contains(t, out, "Merged draft of group "+groups[0].ID+" into out.md")
	doc := showDest(t, "out.md")
	require.Len(t, doc.Tree.Children, 1)
	assert.Equal(t, "Merged cache paragraph.", doc.Tree.Children[0].Text())
	assert.Len(t, listGroups(t), len(groups)-1)
}

func TestDraftCmd_ApplyTerms(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	useDraftLLM(t, stubLLM{reply: "- **TTL**: How long a cached entry lives"})
	a := writeSource(t, "a.md", cachingDoc)
	b := writeSource(t, "b.md", cachingDoc)
	_, err := runCmd(t, "ingest", a, b)
	require.NoError(t, err)

	out, err := runCmd(t, "groups", "--terms", "--json")
	require.NoError(t, err)
	var groups []domain.TermGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 1)

	_, err = runCmd(t, "draft", groups[0].ID, "--into", "out.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err = runCmd(t, "draft", groups[0].ID, "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied TTL: How long a cached entry lives")

	out, err = runCmd(t, "terms", "canonical", "--json")
	require.NoError(t, err)
	var terms []domain.GlossaryTerm
	require.NoError(t, json.Unmarshal([]byte(out), &terms))
	require.Len(t, terms, 1)
	assert.Equal(t, "How long a cached entry lives", terms[0].Definition)
}

func TestDraftCmd_NoModel(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	useDraftLLM(t, nil)
	ingestPair(t)

	_, err := runCmd(t, "draft", listGroups(t)[0].ID)

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestDraftCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCmd(t, "draft", "g1")

	assert.EqualError(t, err, "draft service not configured")
}

func TestParseTermDraft(t *testing.T) {
	tests := []struct {
		in        string
		term, def string
		ok        bool
	}{
		{"- **TTL**: Time to live", "TTL", "Time to live", true},
		{"* **API**: Interface\nextra", "API", "Interface", true},
		{"TTL: Time to live", "TTL", "Time to live", true},
		{"no definition here", "", "", false},
	}
	for _, tt := range tests {
		term, def, ok := parseTermDraft(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.term, term, tt.in)
		assert.Equal(t, tt.def, def, tt.in)
	}
}
