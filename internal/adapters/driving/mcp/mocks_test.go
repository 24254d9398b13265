package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results       []domain.RetrievalResult
	err           error
	gotCollection string
	gotK          int
}

func (m *mockSearchService) Search(_ context.Context, collection, _ string, k int) ([]domain.RetrievalResult, error) {
	m.gotCollection = collection
	m.gotK = k
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer        string
	gotCollection string
}

func (m *mockAnswerService) Ask(_ context.Context, collection, _ string, _ ...string) string {
	m.gotCollection = collection
	return m.answer
}

func (m *mockAnswerService) AnswerWithContext(context.Context, string, string) string {
	return m.answer
}

func (m *mockAnswerService) AskWithImage(context.Context, string, []byte, string, string) string {
	return m.answer
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	n   int
	err error
}

func (m *mockIngestService) IngestDocument(context.Context, string, string, string) (int, error) {
	return m.n, m.err
}

func (m *mockIngestService) IngestArtifact(context.Context, string, *domain.Artifact, string) (int, error) {
	return m.n, m.err
}

func (m *mockIngestService) IngestTextDocs(context.Context, string, []domain.TextDoc) (int, error) {
	return m.n, m.err
}

func (m *mockIngestService) IngestURL(context.Context, string, string) (int, error) {
	return m.n, m.err
}

func (m *mockIngestService) RemoveDocument(context.Context, string, string) error {
	return m.err
}

// mockDatasetService is a mock implementation of driving.DatasetService.
type mockDatasetService struct {
	infos []domain.CollectionInfo
	err   error
}

func (m *mockDatasetService) Create(tenantID, name string) domain.Dataset {
	return domain.NewDataset("abc", tenantID, name)
}

func (m *mockDatasetService) Delete(context.Context, string) error {
	return m.err
}

func (m *mockDatasetService) List(context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, m.err
}

func validPorts() *Ports {
	return &Ports{Search: &mockSearchService{}, Answer: &mockAnswerService{}}
}
