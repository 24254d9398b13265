// Package storetest holds behaviour tests shared by every VectorStore.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) driven.VectorStore

// Passages builds passages for key with one-hot style vectors.
// Passage i gets vectors[i] as its embedding.
func Passages(key, source string, texts []string, vectors [][]float32) []domain.Passage {
	out := make([]domain.Passage, len(texts))
	for i, text := range texts {
		out[i] = domain.Passage{
			ID:      domain.PassageID(key, i),
			Content: text,
			Metadata: domain.PassageMetadata{
				DocumentKey: key,
				Source:      source,
				Ordinal:     i,
			},
			Embedding: vectors[i],
		}
	}
	return out
}

// Run exercises the VectorStore contract.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("search on fresh collection is empty", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureCollection(ctx, "ds_fresh", "m", 3))

		results, err := s.Search(ctx, "ds_fresh", []float32{1, 0, 0}, 6)

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("search on absent collection is empty", func(t *testing.T) {
		s := newStore(t)

		results, err := s.Search(ctx, "ds_missing", []float32{1, 0, 0}, 6)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ranked by similarity and bounded by k", func(t *testing.T) {
		s := newStore(t)
		passages := Passages("doc", "a.txt",
			[]string{"x axis", "y axis", "mostly x"},
			[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}})
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc", passages))

		results, err := s.Search(ctx, "ds_a", []float32{1, 0, 0}, 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "x axis", results[0].Text)
		assert.Equal(t, "mostly x", results[1].Text)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.Equal(t, domain.PassageMetadata{DocumentKey: "doc", Source: "a.txt", Ordinal: 0}, results[0].Metadata)
	})

	t.Run("under-fill returns fewer than k", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"only"}, [][]float32{{1, 0}})))

		results, err := s.Search(ctx, "ds_a", []float32{1, 0}, 6)

		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("replace is idempotent", func(t *testing.T) {
		s := newStore(t)
		passages := Passages("doc", "a", []string{"one", "two"}, [][]float32{{1, 0}, {0, 1}})
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc", passages))
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc", passages))

		results, err := s.Search(ctx, "ds_a", []float32{1, 1}, 10)
		require.NoError(t, err)
		assert.Len(t, results, 2)

		infos, err := s.ListCollections(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, domain.CollectionInfo{Name: "ds_a", Passages: 2, Documents: 1}, infos[0])
	})

	t.Run("smaller set removes stale ordinals", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"one", "two", "three"}, [][]float32{{1, 0}, {0, 1}, {1, 1}})))
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "other",
			Passages("other", "b", []string{"keep"}, [][]float32{{1, 0}})))

		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"uno"}, [][]float32{{0, 1}})))

		results, err := s.Search(ctx, "ds_a", []float32{1, 1}, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"uno", "keep"}, domain.Texts(results))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"secret of A"}, [][]float32{{1, 0}})))
		require.NoError(t, s.ReplaceDocument(ctx, "ds_b", "doc",
			Passages("doc", "b", []string{"public of B"}, [][]float32{{1, 0}})))

		results, err := s.Search(ctx, "ds_b", []float32{1, 0}, 10)

		require.NoError(t, err)
		assert.Equal(t, []string{"public of B"}, domain.Texts(results))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"one"}, [][]float32{{1, 0}})))

		require.NoError(t, s.DeleteCollection(ctx, "ds_a"))
		require.NoError(t, s.DeleteCollection(ctx, "ds_a"))
		require.NoError(t, s.DeleteCollection(ctx, "ds_never"))

		results, err := s.Search(ctx, "ds_a", []float32{1, 0}, 6)
		require.NoError(t, err)
		assert.Empty(t, results)

		infos, err := s.ListCollections(ctx)
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "m", 2))

		err := s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"bad"}, [][]float32{{1, 0, 0}}))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		assert.ErrorIs(t, s.EnsureCollection(ctx, "ds_a", "m", 3), domain.ErrInvalidInput)
	})

	t.Run("model recorded and enforced", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "hash-128", 2))
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "hash-128", 2))
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "", 2))

		err := s.EnsureCollection(ctx, "ds_a", "nomic-embed-text", 2)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		model, err := s.CollectionModel(ctx, "ds_a")
		require.NoError(t, err)
		assert.Equal(t, "hash-128", model)
	})

	t.Run("collection without model adopts the first one", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_a", "doc",
			Passages("doc", "a", []string{"one"}, [][]float32{{1, 0}})))

		model, err := s.CollectionModel(ctx, "ds_a")
		require.NoError(t, err)
		assert.Empty(t, model)

		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "hash-128", 2))
		assert.ErrorIs(t, s.EnsureCollection(ctx, "ds_a", "other", 2), domain.ErrInvalidInput)
	})

	t.Run("model of absent collection", func(t *testing.T) {
		_, err := newStore(t).CollectionModel(ctx, "ds_missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete forgets the model", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "hash-128", 2))
		require.NoError(t, s.DeleteCollection(ctx, "ds_a"))

		assert.NoError(t, s.EnsureCollection(ctx, "ds_a", "nomic-embed-text", 4))
	})

	t.Run("list collections sorted with counts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ReplaceDocument(ctx, "ds_b", "k1",
			Passages("k1", "x", []string{"a", "b"}, [][]float32{{1}, {1}})))
		require.NoError(t, s.ReplaceDocument(ctx, "ds_b", "k2",
			Passages("k2", "y", []string{"c"}, [][]float32{{1}})))
		require.NoError(t, s.EnsureCollection(ctx, "ds_a", "m", 1))

		infos, err := s.ListCollections(ctx)

		require.NoError(t, err)
		assert.Equal(t, []domain.CollectionInfo{
			{Name: "ds_a", Model: "m", Passages: 0, Documents: 0},
			{Name: "ds_b", Passages: 3, Documents: 2},
		}, infos)
	})
}
