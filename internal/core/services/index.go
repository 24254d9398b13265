package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// IndexManager embeds passages and stores them per collection.
// A collection is only ever searched with the embedder that filled it.
type IndexManager struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewIndexManager creates an index manager.
func NewIndexManager(store driven.VectorStore, embedder driven.EmbeddingService) *IndexManager {
	return &IndexManager{store: store, embedder: embedder}
}

// Upsert stores passages for docKey with ids "{docKey}::{ordinal}".
// Passages previously stored under docKey beyond the new set are removed,
// so upserting the same input twice leaves exactly one copy.
//
// passages and metas must have equal length; a mismatch is a programming
// error and panics.
func (m *IndexManager) Upsert(
	ctx context.Context, collection, docKey string, passages []string, metas []domain.PassageMetadata,
) error {
	if len(passages) != len(metas) {
		panic(fmt.Sprintf("services: upsert %s: %d passages but %d metadata entries",
			docKey, len(passages), len(metas)))
	}

	var vectors [][]float32
	if len(passages) > 0 {
		var err error
		vectors, err = m.embedder.EmbedBatch(ctx, passages)
		if err != nil {
			return fmt.Errorf("%w: embed passages: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(passages) {
			return fmt.Errorf("%w: embedder returned %d vectors for %d passages",
				domain.ErrEmbeddingUnavailable, len(vectors), len(passages))
		}
		if err := m.store.EnsureCollection(ctx, collection, m.embedder.ModelName(), len(vectors[0])); err != nil {
			return fmt.Errorf("ensure collection %s: %w", collection, err)
		}
	}

	stored := make([]domain.Passage, len(passages))
	for i, text := range passages {
		stored[i] = domain.Passage{
			ID:        domain.PassageID(docKey, i),
			Content:   text,
			Metadata:  metas[i],
			Embedding: vectors[i],
		}
	}

	if err := m.store.ReplaceDocument(ctx, collection, docKey, stored); err != nil {
		return fmt.Errorf("store passages for %s: %w", docKey, err)
	}

	logger.Debug("Upserted %d passages for %s into %s", len(stored), docKey, collection)
	return nil
}

// Search returns up to k passages ranked by similarity to query.
// A collection that is absent or empty yields an empty list.
func (m *IndexManager) Search(ctx context.Context, collection, query string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalUnavailable, err)
	}

	model, err := m.store.CollectionModel(ctx, collection)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return []domain.RetrievalResult{}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrRetrievalUnavailable, collection, err)
	case model != "" && model != m.embedder.ModelName():
		return nil, fmt.Errorf("%w: %w: collection %s was embedded with %s, not %s",
			domain.ErrRetrievalUnavailable, domain.ErrInvalidInput, collection, model, m.embedder.ModelName())
	}

	results, err := m.store.Search(ctx, collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrRetrievalUnavailable, collection, err)
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	return results, nil
}

// DeleteCollection removes a collection. Deleting an absent collection
// is not an error.
func (m *IndexManager) DeleteCollection(ctx context.Context, collection string) error {
	if err := m.store.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

// ListCollections summarises stored collections.
func (m *IndexManager) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	infos, err := m.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %w", domain.ErrRetrievalUnavailable, err)
	}
	return infos, nil
}
