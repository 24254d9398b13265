package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps collections in process memory.
// Search is a brute-force cosine scan.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	model      string
	dimensions int
	passages   map[string]domain.Passage
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*collection),
	}
}

// EnsureCollection creates the collection if it does not exist.
func (s *VectorStore) EnsureCollection(_ context.Context, name, model string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.ensure(name, dimensions)
	if err != nil {
		return err
	}
	switch {
	case c.model == "":
		c.model = model
	case model != "" && c.model != model:
		return fmt.Errorf("%w: collection %s was embedded with %s, got %s",
			domain.ErrInvalidInput, name, c.model, model)
	}
	return nil
}

func (s *VectorStore) ensure(name string, dimensions int) (*collection, error) {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{dimensions: dimensions, passages: make(map[string]domain.Passage)}
		s.collections[name] = c
		return c, nil
	}
	if c.dimensions != dimensions {
		return nil, fmt.Errorf("%w: collection %s holds %d-dimension vectors, got %d",
			domain.ErrInvalidInput, name, c.dimensions, dimensions)
	}
	return c, nil
}

// CollectionModel returns the embedding model recorded for a collection.
func (s *VectorStore) CollectionModel(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return c.model, nil
}

// ReplaceDocument stores passages for a document key and removes any
// stored passage for the key that the new set does not contain.
func (s *VectorStore) ReplaceDocument(_ context.Context, name, documentKey string, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		if len(passages) == 0 {
			return nil
		}
		var err error
		if c, err = s.ensure(name, len(passages[0].Embedding)); err != nil {
			return err
		}
	}

	keep := make(map[string]bool, len(passages))
	for _, p := range passages {
		if len(p.Embedding) != c.dimensions {
			return fmt.Errorf("%w: passage %s has %d dimensions, collection %s has %d",
				domain.ErrInvalidInput, p.ID, len(p.Embedding), name, c.dimensions)
		}
		keep[p.ID] = true
	}

	for id, p := range c.passages {
		if p.Metadata.DocumentKey == documentKey && !keep[id] {
			delete(c.passages, id)
		}
	}
	for _, p := range passages {
		c.passages[p.ID] = p
	}
	return nil
}

// Search returns up to k passages ranked by cosine similarity.
func (s *VectorStore) Search(_ context.Context, name string, query []float32, k int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok || len(c.passages) == 0 || k <= 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrInvalidInput, len(query), name, c.dimensions)
	}

	results := make([]domain.RetrievalResult, 0, len(c.passages))
	for _, p := range c.passages {
		results = append(results, domain.RetrievalResult{
			Text:     p.Content,
			Metadata: p.Metadata,
			Score:    similarity.Cosine(query, p.Embedding),
		})
	}
	return similarity.TopK(results, k), nil
}

// DeleteCollection removes a collection. Absent collections are ignored.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// ListCollections summarises stored collections, sorted by name.
func (s *VectorStore) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for name, c := range s.collections {
		docs := make(map[string]bool)
		for _, p := range c.passages {
			docs[p.Metadata.DocumentKey] = true
		}
		infos = append(infos, domain.CollectionInfo{
			Name:      name,
			Model:     c.model,
			Passages:  len(c.passages),
			Documents: len(docs),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
