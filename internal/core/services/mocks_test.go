package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	name    string
	reply   string
	err     error
	mu      sync.Mutex
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string          { return m.name }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// groundingStub answers like a well-behaved grounded model: it admits
// ignorance unless the prompt carries both the grounding instruction and
// a context containing the answer.
type groundingStub struct {
	answer string
	needle string
}

func (g *groundingStub) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	grounded := strings.Contains(prompt, "Use ONLY the provided context")
	_, ctx, _ := strings.Cut(prompt, "Context:\n")
	if grounded && strings.Contains(ctx, g.needle) {
		return g.answer, nil
	}
	if grounded {
		return "I don't have enough information.", nil
	}
	return "ungrounded guess", nil
}

func (g *groundingStub) ModelName() string          { return "grounding-stub" }
func (g *groundingStub) Ping(context.Context) error { return nil }
func (g *groundingStub) Close() error               { return nil }

// mockRetriever implements Retriever for testing.
type mockRetriever struct {
	results []domain.RetrievalResult
	err     error
	gotK    int
}

func (m *mockRetriever) Search(_ context.Context, _, _ string, k int) ([]domain.RetrievalResult, error) {
	m.gotK = k
	return m.results, m.err
}

// mockCaptioner implements driven.Captioner for testing.
type mockCaptioner struct {
	caption string
	err     error
}

func (m *mockCaptioner) Caption(context.Context, []byte, string) (string, error) {
	return m.caption, m.err
}

func (m *mockCaptioner) ModelName() string { return "vision" }

// mockFetcher implements driven.WebFetcher for testing.
type mockFetcher struct {
	pages map[string]string
	calls []string
}

func (m *mockFetcher) FetchOne(_ context.Context, url string) (string, bool) {
	m.calls = append(m.calls, url)
	text, ok := m.pages[url]
	return text, ok
}

// renamedEmbedder reports a different model name for the same vectors.
type renamedEmbedder struct {
	driven.EmbeddingService
	name string
}

func (m *renamedEmbedder) ModelName() string { return m.name }

// mockEmbedder implements driven.EmbeddingService with a configurable failure.
type mockEmbedder struct {
	driven.EmbeddingService
	err   error
	short bool
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.short {
		return nil, nil
	}
	return m.EmbeddingService.EmbedBatch(ctx, texts)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.EmbeddingService.Embed(ctx, text)
}

// failingStore implements driven.VectorStore and fails every call.
type failingStore struct {
	driven.VectorStore
}

var errStoreDown = errors.New("store down")

func (failingStore) CollectionModel(context.Context, string) (string, error) {
	return "", errStoreDown
}

func (failingStore) Search(context.Context, string, []float32, int) ([]domain.RetrievalResult, error) {
	return nil, errStoreDown
}

func (failingStore) DeleteCollection(context.Context, string) error {
	return errStoreDown
}

func (failingStore) ListCollections(context.Context) ([]domain.CollectionInfo, error) {
	return nil, errStoreDown
}
