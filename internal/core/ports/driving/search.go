package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService provides passage retrieval to external actors.
type SearchService interface {
	// Search returns up to k passages from the collection ranked by similarity.
	Search(ctx context.Context, collection, query string, k int) ([]domain.RetrievalResult, error)
}
