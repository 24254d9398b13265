package memory

import (
	"testing"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestVectorStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) driven.VectorStore {
		return NewVectorStore()
	})
}
