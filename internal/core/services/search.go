package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService exposes raw passage retrieval without generation.
type SearchService struct {
	index *IndexManager
}

// NewSearchService creates a search service.
func NewSearchService(index *IndexManager) *SearchService {
	return &SearchService{index: index}
}

// Search returns up to k passages. An empty query returns no results.
func (s *SearchService) Search(ctx context.Context, collection, query string, k int) ([]domain.RetrievalResult, error) {
	defer logger.Section("Search")()
	logger.Debug("Query for %s: %q (k=%d)", collection, query, k)

	if strings.TrimSpace(query) == "" {
		return []domain.RetrievalResult{}, nil
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}

	results, err := s.index.Search(ctx, collection, query, k)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d passages in %s", len(results), collection)
	return results, nil
}
