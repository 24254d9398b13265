package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockIngestService records every call as a short string.
type mockIngestService struct {
	n   int
	err error

	mu    sync.Mutex
	calls []string
}

func (m *mockIngestService) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (m *mockIngestService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockIngestService) IngestDocument(_ context.Context, collection, path, docKey string) (int, error) {
	m.record("doc %s %s %s", collection, path, docKey)
	return m.n, m.err
}

func (m *mockIngestService) IngestArtifact(_ context.Context, collection string, a *domain.Artifact, docKey string) (int, error) {
	m.record("artifact %s %s %s", collection, a.Name, docKey)
	return m.n, m.err
}

func (m *mockIngestService) IngestTextDocs(_ context.Context, datasetID string, docs []domain.TextDoc) (int, error) {
	m.record("texts %s %d", datasetID, len(docs))
	return m.n, m.err
}

func (m *mockIngestService) IngestURL(_ context.Context, datasetID, url string) (int, error) {
	m.record("url %s %s", datasetID, url)
	return m.n, m.err
}

func (m *mockIngestService) RemoveDocument(_ context.Context, collection, docKey string) error {
	m.record("remove %s %s", collection, docKey)
	return m.err
}

// mockAnswerService returns a fixed answer and records its inputs.
type mockAnswerService struct {
	answer        string
	gotCollection string
	gotQuestion   string
	gotExtra      []string
	gotImage      []byte
	gotMime       string
}

func (m *mockAnswerService) Ask(_ context.Context, collection, question string, extra ...string) string {
	m.gotCollection = collection
	m.gotQuestion = question
	m.gotExtra = extra
	return m.answer
}

func (m *mockAnswerService) AnswerWithContext(_ context.Context, question, _ string) string {
	m.gotQuestion = question
	return m.answer
}

func (m *mockAnswerService) AskWithImage(_ context.Context, collection string, image []byte, mimeType, question string) string {
	m.gotCollection = collection
	m.gotImage = image
	m.gotMime = mimeType
	m.gotQuestion = question
	return m.answer
}

// mockSearchService returns fixed results.
type mockSearchService struct {
	results       []domain.RetrievalResult
	gotCollection string
	gotK          int
}

func (m *mockSearchService) Search(_ context.Context, collection, _ string, k int) ([]domain.RetrievalResult, error) {
	m.gotCollection = collection
	m.gotK = k
	return m.results, nil
}

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(context.Context, string, string, int) ([]domain.RetrievalResult, error) {
	return nil, domain.ErrRetrievalUnavailable
}

// mockDatasetService keeps datasets in a slice.
type mockDatasetService struct {
	infos   []domain.CollectionInfo
	err     error
	deleted []string
}

func (m *mockDatasetService) Create(tenantID, name string) domain.Dataset {
	return domain.NewDataset("0123456789ab", tenantID, name)
}

func (m *mockDatasetService) Delete(_ context.Context, datasetID string) error {
	m.deleted = append(m.deleted, datasetID)
	return m.err
}

func (m *mockDatasetService) List(context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, m.err
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings     domain.AppSettings
	validateErr  error
	embeddingErr error
	llmErr       error
	apiKeys      []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	m.apiKeys = append(m.apiKeys, apiKey)
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	m.apiKeys = append(m.apiKeys, apiKey)
	return nil
}

func (m *mockSettingsService) SetChunking(size, overlap int) error {
	c := domain.ChunkSettings{Size: size, Overlap: overlap}
	if err := c.Validate(); err != nil {
		return err
	}
	m.settings.Chunking = c
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.embeddingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

func capitalsResult() domain.RetrievalResult {
	return domain.RetrievalResult{
		Text:     "Berlin is the capital of Germany.",
		Metadata: domain.PassageMetadata{DocumentKey: "capitals", Source: "capitals.txt", Ordinal: 1},
		Score:    0.91,
	}
}

// setupTestServices installs mocks for every service and returns a
// function restoring the previous ones.
func setupTestServices() func() {
	oldIngest, oldAnswer, oldSearch := ingestService, answerService, searchService
	oldDataset, oldSettings := datasetService, settingsService

	SetServices(Services{
		Ingest:   &mockIngestService{n: 2},
		Answer:   &mockAnswerService{answer: "Berlin."},
		Search:   &mockSearchService{results: []domain.RetrievalResult{capitalsResult()}},
		Dataset:  &mockDatasetService{},
		Settings: newMockSettingsService(),
	})

	return func() {
		SetServices(Services{
			Ingest:   oldIngest,
			Answer:   oldAnswer,
			Search:   oldSearch,
			Dataset:  oldDataset,
			Settings: oldSettings,
		})
	}
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose = false
	datasetID = ""
	ingestKey = ""
	askContext = nil
	searchLimit = domain.DefaultTopK
	searchJSON = false
	datasetTenant = ""
	datasetName = ""
	versionShort = false
	mcpPort = 0
	mcpHost = "localhost"
	mcpShutdownTimeout = mcp.DefaultShutdownTimeout
	providerName = ""
	providerModel = ""
	providerAPIKey = ""
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
