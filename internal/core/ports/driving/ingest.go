package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestService pushes artifacts through normalisation, chunking and indexing.
// Each method returns the number of passages stored.
type IngestService interface {
	// IngestDocument reads the file at path and stores its passages in the
	// collection under docKey, replacing any earlier passages for that key.
	IngestDocument(ctx context.Context, collection, path, docKey string) (int, error)

	// IngestArtifact stores passages extracted from in-memory bytes.
	IngestArtifact(ctx context.Context, collection string, artifact *domain.Artifact, docKey string) (int, error)

	// IngestTextDocs stores already-extracted texts in the dataset's collection.
	// Document i is keyed "{datasetID}-{i}".
	IngestTextDocs(ctx context.Context, datasetID string, docs []domain.TextDoc) (int, error)

	// IngestURL fetches one page and stores its text in the dataset's collection.
	// Returns domain.ErrNoDocuments when the page yields no text.
	IngestURL(ctx context.Context, datasetID, url string) (int, error)

	// RemoveDocument deletes the passages stored under docKey.
	RemoveDocument(ctx context.Context, collection, docKey string) error
}
