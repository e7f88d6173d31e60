package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// ingestPair ingests the two caching documents and returns their source ids.
func ingestPair(t *testing.T) (string, string) {
	t.Helper()
	a := writeSource(t, "a.md", cachingDoc)
	b := writeSource(t, "b.md", cachingCopy)
	out, err := runCmd(t, "ingest", a, b)
	require.NoError(t, err)
	require.Contains(t, out, "Ingested "+sourceID(a))
	require.Contains(t, out, "Ingested "+sourceID(b))
	return sourceID(a), sourceID(b)
}

func listGroups(t *testing.T) []domain.SimilarityGroup {
	t.Helper()
	out, err := runCmd(t, "groups", "--json")
	require.NoError(t, err)
	var groups []domain.SimilarityGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	return groups
}

func listUnique(t *testing.T) []domain.SourceSection {
	t.Helper()
	out, err := runCmd(t, "unique", "--json")
	require.NoError(t, err)
	var unique []domain.SourceSection
	require.NoError(t, json.Unmarshal([]byte(out), &unique))
	return unique
}

func TestGroupsCmd_Metadata(t *testing.T) {
	assert.Equal(t, "groups", groupsCmd.Use)
	require.NotNil(t, groupsCmd.Flags().Lookup("terms"))
	require.NotNil(t, groupsCmd.Flags().Lookup("json"))
	assert.Equal(t, "t", groupsCmd.Flags().Lookup("terms").Shorthand)
}

func TestGroupsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCmd(t, "groups")
	require.NoError(t, err)
	assert.Contains(t, out, "No similarity groups.")

	out, err = runCmd(t, "groups", "--terms")
	require.NoError(t, err)
	assert.Contains(t, out, "No term groups.")
}

func TestGroupsCmd_ListsDuplicatesAcrossSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	a, b := ingestPair(t)

	groups := listGroups(t)

	require.NotEmpty(t, groups)
	for _, g := range groups {
		require.Len(t, g.Members, 2)
		sources := []string{g.Members[0].SourceID, g.Members[1].SourceID}
		assert.ElementsMatch(t, []string{a, b}, sources)
	}

	out, err := runCmd(t, "groups")
	require.NoError(t, err)
	assert.Contains(t, out, "Group 1")
	assert.Contains(t, out, "A cache stores frequently used data")
}

func TestUniqueCmd_ListsUnpairedSections(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)

	unique := listUnique(t)

	var contents []string
	for _, s := range unique {
		contents = append(contents, s.Content)
		assert.Empty(t, s.GroupID)
	}
	assert.Contains(t, contents, "Deployment happens every Tuesday after the release review.")
}

func TestUniqueCmd_Terms(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)

	out, err := runCmd(t, "unique", "--terms")

	require.NoError(t, err)
	assert.Contains(t, out, "TTL: Time to live for a cached entry")
}

func TestResolveCmd_RemovesGroup(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)
	before := listGroups(t)
	require.NotEmpty(t, before)

	ids := []string{before[0].Members[0].ID, before[0].Members[1].ID}
	out, err := runCmd(t, append([]string{"resolve"}, ids...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Resolved 2 item(s)")

	after := listGroups(t)
	assert.Len(t, after, len(before)-1)
	for _, g := range after {
		assert.NotEqual(t, before[0].ID, g.ID)
	}
}

func TestResolveCmd_UnknownIDIsIgnored(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCmd(t, "resolve", "missing")

	assert.NoError(t, err)
}

func TestPopCmd_SplitsGroup(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)
	before := listGroups(t)
	require.NotEmpty(t, before)
	popped := before[0].Members[0]

	out, err := runCmd(t, "pop", popped.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Popped "+popped.ID)

	assert.Len(t, listGroups(t), len(before)-1)
	var uniqueIDs []string
	for _, s := range listUnique(t) {
		uniqueIDs = append(uniqueIDs, s.ID)
	}
	assert.Contains(t, uniqueIDs, popped.ID)
	assert.Contains(t, uniqueIDs, before[0].Members[1].ID)
}

func TestPopCmd_RequiresOneArg(t *testing.T) {
	_, err := runCmd(t, "pop")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestTermsCmd_EditResolveAndCanonical(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)

	out, err := runCmd(t, "unique", "--terms", "--json")
	require.NoError(t, err)
	var terms []domain.GlossaryTerm
	require.NoError(t, json.Unmarshal([]byte(out), &terms))
	require.NotEmpty(t, terms)
	id := terms[0].ID

	_, err = runCmd(t, "terms", "edit", id, "TTL", "Time to live")
	require.NoError(t, err)

	out, err = runCmd(t, "terms", "canonical")
	require.NoError(t, err)
	assert.Contains(t, out, "No resolved terms.")

	_, err = runCmd(t, "resolve", id)
	require.NoError(t, err)

	out, err = runCmd(t, "terms", "canonical")
	require.NoError(t, err)
	assert.Contains(t, out, "TTL: Time to live\n")
}

func TestTermsCmd_Reject(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)

	out, err := runCmd(t, "unique", "--terms", "--json")
	require.NoError(t, err)
	var terms []domain.GlossaryTerm
	require.NoError(t, json.Unmarshal([]byte(out), &terms))
	require.NotEmpty(t, terms)

	out, err = runCmd(t, "terms", "reject", terms[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Rejected 1 term(s)")

	out, err = runCmd(t, "unique", "--terms", "--json")
	require.NoError(t, err)
	var remaining []domain.GlossaryTerm
	require.NoError(t, json.Unmarshal([]byte(out), &remaining))
	for _, term := range remaining {
		assert.NotEqual(t, terms[0].ID, term.ID)
	}
}

func TestReviewCmds_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	SetServices(Services{})
	defer cleanup()

	for _, args := range [][]string{
		{"groups"},
		{"unique"},
		{"resolve", "x"},
		{"pop", "x"},
		{"terms", "reject", "x"},
	} {
		_, err := runCmd(t, args...)
		assert.EqualError(t, err, "review service not configured", args)
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two", preview("one\n  two"))

	long := preview("word " + strings.Repeat("x", 200))
	assert.Len(t, long, previewLength)
	assert.True(t, strings.HasSuffix(long, "..."))
}
