package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DatasetService implements the interface.
var _ driving.DatasetService = (*DatasetService)(nil)

// datasetIDLength is the number of hex characters in a dataset id.
const datasetIDLength = 12

// DatasetService manages dataset collections. Dataset records themselves
// are owned by the caller; only the vector collections live here.
type DatasetService struct {
	index *IndexManager
}

// NewDatasetService creates a dataset service.
func NewDatasetService(index *IndexManager) *DatasetService {
	return &DatasetService{index: index}
}

// Create allocates a dataset with a fresh 12-hex identifier.
func (s *DatasetService) Create(tenantID, name string) domain.Dataset {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:datasetIDLength]
	ds := domain.NewDataset(id, tenantID, name)
	logger.Info("Created dataset %s (%s) -> %s", id, name, ds.Collection())
	return ds
}

// Delete removes the dataset's collection. Deleting twice is not an error.
func (s *DatasetService) Delete(ctx context.Context, datasetID string) error {
	collection := domain.CollectionName(datasetID)
	if err := s.index.DeleteCollection(ctx, collection); err != nil {
		return err
	}
	logger.Info("Deleted %s", collection)
	return nil
}

// List summarises stored dataset collections. Collections without the
// dataset prefix are left out.
func (s *DatasetService) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	infos, err := s.index.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	datasets := make([]domain.CollectionInfo, 0, len(infos))
	for _, info := range infos {
		if _, ok := domain.DatasetIDFromCollection(info.Name); ok {
			datasets = append(datasets, info)
		}
	}
	return datasets, nil
}
