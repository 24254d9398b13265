package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorStore keeps embedded passages in named, isolated collections.
// Backed by SQLite or process memory.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Model and dimensions are fixed on first creation; a later call with a
	// different model or size fails with domain.ErrInvalidInput. A collection
	// recorded without a model takes the first non-empty model it is given.
	EnsureCollection(ctx context.Context, collection, model string, dimensions int) error

	// CollectionModel returns the embedding model recorded for a collection.
	// An absent collection yields domain.ErrNotFound.
	CollectionModel(ctx context.Context, collection string) (string, error)

	// ReplaceDocument stores passages for a document key.
	// Passages with the same ID are overwritten and any stored passage for
	// the key that is not in the new set is removed.
	ReplaceDocument(ctx context.Context, collection, documentKey string, passages []domain.Passage) error

	// Search returns up to k passages ranked by cosine similarity.
	// An absent or empty collection yields no results and no error.
	Search(ctx context.Context, collection string, query []float32, k int) ([]domain.RetrievalResult, error)

	// DeleteCollection removes the collection and all its passages.
	// Deleting an absent collection is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// ListCollections summarises stored collections.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}
