package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DatasetService manages dataset lifecycles.
type DatasetService interface {
	// Create allocates a new dataset with a fresh identifier.
	// Its collection is created on first ingestion.
	Create(tenantID, name string) domain.Dataset

	// Delete removes the dataset's collection. Deleting twice is not an error.
	Delete(ctx context.Context, datasetID string) error

	// List summarises every stored dataset collection.
	List(ctx context.Context) ([]domain.CollectionInfo, error)
}
