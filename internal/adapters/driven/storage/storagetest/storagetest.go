// Package storagetest holds behaviour tests shared by every vector index
// and destination store implementation.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

// Section builds a section item with the given vector.
func Section(id, source string, vector ...float32) domain.IndexItem {
	return domain.IndexItem{
		ID:     id,
		Vector: vector,
		Metadata: domain.ItemMetadata{
			ContentType: domain.ContentTypeSection,
			Content:     "content of " + id,
			SourceID:    source,
			Section: &domain.SectionMetadata{
				BlockType:     domain.BlockParagraph,
				Text:          "content of " + id,
				ParentHeading: "Intro",
				HeadingDepth:  1,
				Path:          domain.Path{0, 1},
				StartLine:     3,
				EndLine:       4,
			},
		},
	}
}

// Term builds a term item with the given vector.
func Term(id, source, term string, vector ...float32) domain.IndexItem {
	return domain.IndexItem{
		ID:     id,
		Vector: vector,
		Metadata: domain.ItemMetadata{
			ContentType: domain.ContentTypeTerm,
			Content:     term + ": definition",
			SourceID:    source,
			Term: &domain.TermMetadata{
				Term:       term,
				Definition: "definition",
				Confidence: 0.9,
				Pattern:    domain.PatternBoldDefinition,
			},
		},
	}
}

// RunVectorIndex exercises a driven.VectorIndex. newIndex must return an
// empty index; it is called once per subtest.
func RunVectorIndex(t *testing.T, newIndex func(t *testing.T) driven.VectorIndex) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert and get round trip", func(t *testing.T) {
		idx := newIndex(t)
		item := Section("s1", "a.md", 1, 0, 0)
		require.NoError(t, idx.Insert(ctx, item))

		got, err := idx.Get(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, item.Metadata, got.Metadata)
		assert.Equal(t, item.Vector, got.Vector)
	})

	t.Run("insert duplicate", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Insert(ctx, Section("s1", "a.md", 1, 0, 0)))

		err := idx.Insert(ctx, Section("s1", "a.md", 0, 1, 0))

		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newIndex(t).Get(ctx, "nope")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("upsert replaces and keeps order", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Upsert(ctx, Section("s1", "a.md", 1, 0, 0)))
		require.NoError(t, idx.Upsert(ctx, Section("s2", "a.md", 0, 1, 0)))
		replaced := Section("s1", "b.md", 1, 1, 0)
		require.NoError(t, idx.Upsert(ctx, replaced))

		all, err := idx.ListAll(ctx)

		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "s1", all[0].ID)
		assert.Equal(t, "b.md", all[0].Metadata.SourceID)
		assert.Equal(t, "s2", all[1].ID)
	})

	t.Run("query orders by score and filters type", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Insert(ctx, Section("far", "a.md", 0, 1, 0)))
		require.NoError(t, idx.Insert(ctx, Section("near", "a.md", 1, 0.1, 0)))
		require.NoError(t, idx.Insert(ctx, Section("exact", "a.md", 1, 0, 0)))
		require.NoError(t, idx.Insert(ctx, Term("t1", "a.md", "cache", 1, 0, 0)))

		hits, err := idx.Query(ctx, []float32{1, 0, 0}, 2, domain.ContentTypeSection)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "exact", hits[0].Item.ID)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
		assert.Equal(t, "near", hits[1].Item.ID)
		assert.Greater(t, hits[0].Score, hits[1].Score)

		terms, err := idx.Query(ctx, []float32{1, 0, 0}, 5, domain.ContentTypeTerm)
		require.NoError(t, err)
		require.Len(t, terms, 1)
		assert.Equal(t, "cache", terms[0].Item.Metadata.Term.Term)

		all, err := idx.Query(ctx, []float32{1, 0, 0}, 10, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("update metadata", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Insert(ctx, Term("t1", "a.md", "cache", 1, 0, 0)))

		require.NoError(t, idx.UpdateMetadata(ctx, "t1", domain.MetadataPatch{
			IsResolved: domain.BoolPtr(true),
			GroupID:    domain.StringPtr("g1"),
			Term: &domain.TermMetadata{
				Term:       "Cache",
				Definition: "Fast storage",
				Confidence: 1,
				Pattern:    domain.PatternBoldDefinition,
			},
		}))
		got, err := idx.Get(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, got.Metadata.IsResolved)
		assert.False(t, got.Metadata.IsPopped)
		assert.Equal(t, "g1", got.Metadata.GroupID)
		assert.Equal(t, "Cache: Fast storage", got.Metadata.Content)

		require.NoError(t, idx.UpdateMetadata(ctx, "t1", domain.MetadataPatch{GroupID: domain.StringPtr("")}))
		got, err = idx.Get(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, got.HasGroup())
		assert.True(t, got.Metadata.IsResolved)
	})

	t.Run("update missing", func(t *testing.T) {
		err := newIndex(t).UpdateMetadata(ctx, "nope", domain.MetadataPatch{IsPopped: domain.BoolPtr(true)})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete and reset", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Insert(ctx, Section("s1", "a.md", 1, 0, 0)))
		require.NoError(t, idx.Insert(ctx, Section("s2", "a.md", 0, 1, 0)))
		require.NoError(t, idx.Insert(ctx, Section("s3", "a.md", 1, 1, 0)))

		require.NoError(t, idx.Delete(ctx, "s2"))
		require.NoError(t, idx.Delete(ctx, "s2"))
		all, err := idx.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "s1", all[0].ID)
		assert.Equal(t, "s3", all[1].ID)

		require.NoError(t, idx.Reset(ctx))
		all, err = idx.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("returned items are copies", func(t *testing.T) {
		idx := newIndex(t)
		require.NoError(t, idx.Insert(ctx, Section("s1", "a.md", 1, 0, 0)))

		got, err := idx.Get(ctx, "s1")
		require.NoError(t, err)
		got.Metadata.IsResolved = true
		got.Metadata.Section.Path[0] = 9

		again, err := idx.Get(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, again.Metadata.IsResolved)
		assert.Equal(t, domain.Path{0, 1}, again.Metadata.Section.Path)
	})
}

// RunDestinationStore exercises a driven.DestinationStore.
func RunDestinationStore(t *testing.T, newStore func(t *testing.T) driven.DestinationStore) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	doc := func(uri string) domain.DestinationDocument {
		return domain.DestinationDocument{
			URI:       uri,
			Title:     "Title of " + uri,
			Unsaved:   true,
			Tree:      domain.NewRoot(domain.NewHeading(1, "Title"), domain.NewParagraph("Body")),
			CreatedAt: created,
			UpdatedAt: created,
		}
	}

	t.Run("save and get", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, doc("out.md")))

		got, err := store.Get(ctx, "out.md")

		require.NoError(t, err)
		assert.Equal(t, "Title of out.md", got.Title)
		assert.True(t, got.Unsaved)
		assert.True(t, created.Equal(got.CreatedAt))
		require.Len(t, got.Tree.Children, 2)
		assert.Equal(t, "Body", got.Tree.Children[1].Text())
	})

	t.Run("save replaces", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, doc("out.md")))
		updated := doc("out.md")
		updated.Unsaved = false
		updated.Tree = domain.NewRoot()
		require.NoError(t, store.Save(ctx, updated))

		got, err := store.Get(ctx, "out.md")

		require.NoError(t, err)
		assert.False(t, got.Unsaved)
		assert.Empty(t, got.Tree.Children)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newStore(t).Get(ctx, "missing.md")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list sorted, delete and reset", func(t *testing.T) {
		store := newStore(t)
		for _, uri := range []string{"b.md", "a.md", "c.md"} {
			require.NoError(t, store.Save(ctx, doc(uri)))
		}

		docs, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "a.md", docs[0].URI)
		assert.Equal(t, "c.md", docs[2].URI)

		require.NoError(t, store.Delete(ctx, "b.md"))
		require.NoError(t, store.Delete(ctx, "b.md"))
		docs, err = store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		require.NoError(t, store.Reset(ctx))
		docs, err = store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("returned trees are copies", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, doc("out.md")))

		got, err := store.Get(ctx, "out.md")
		require.NoError(t, err)
		got.Tree.Children = nil

		again, err := store.Get(ctx, "out.md")
		require.NoError(t, err)
		assert.Len(t, again.Tree.Children, 2)
	})
}
