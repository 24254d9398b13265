package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockValidator implements driven.AIConfigValidator for testing.
type mockValidator struct {
	err       error
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.err
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.err
}

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func newSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	return NewSettingsService(store, nil).WithEnv(envOf(env)), store
}

func TestSettingsService_Defaults(t *testing.T) {
	svc, _ := newSettings(nil)

	settings, err := svc.Get()

	require.NoError(t, err)
	d := domain.DefaultAppSettings()
	assert.Equal(t, d.Embedding, settings.Embedding)
	assert.Equal(t, d.Chunking, settings.Chunking)
	assert.Equal(t, d.Retrieval, settings.Retrieval)
	assert.Equal(t, d.Fetch, settings.Fetch)
	assert.Equal(t, d.Storage, settings.Storage)
	assert.Empty(t, settings.LLMFallbacks)
	assert.Equal(t, d, svc.GetDefaults())
}

func TestSettingsService_ConfigStoreValues(t *testing.T) {
	svc, store := newSettings(nil)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, store.Set("chunking.size", int64(500)))
	require.NoError(t, store.Set("fetch.total_budget", "30s"))
	require.NoError(t, store.Set("fetch.requests_per_second", int64(4)))
	require.NoError(t, store.Set("storage.backend", "memory"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, 500, settings.Chunking.Size)
	assert.Equal(t, 30*time.Second, settings.Fetch.TotalBudget)
	assert.InDelta(t, 4.0, settings.Fetch.RequestsPerSecond, 0)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Backend)
}

func TestSettingsService_EnvOverrides(t *testing.T) {
	svc, store := newSettings(map[string]string{
		"SERCHA_RAG_LLM_PROVIDER":          "gemini",
		"SERCHA_RAG_CHUNKING_OVERLAP":      "50",
		"SERCHA_RAG_FETCH_REQUEST_TIMEOUT": "2s",
		"SERCHA_RAG_RETRIEVAL_TOP_K":       "not-a-number",
		"SERCHA_RAG_LLM_FALLBACK":          "openai:gpt-4o, bogus ,ollama",
		"GEMINI_API_KEY":                   "g-key",
		"GEMINI_MODEL":                     "gemini-2.0-flash",
		"OPENAI_API_KEY":                   "o-key",
		"SERCHA_RAG_EMBEDDING_PROVIDER":    "nonsense",
	})
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("retrieval.top_k", 3))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderGemini, settings.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", settings.LLM.Model)
	assert.Equal(t, "g-key", settings.LLM.APIKey)
	assert.Equal(t, 50, settings.Chunking.Overlap)
	assert.Equal(t, 2*time.Second, settings.Fetch.RequestTimeout)
	assert.Equal(t, 3, settings.Retrieval.TopK)
	assert.Equal(t, domain.AIProviderLocal, settings.Embedding.Provider)
	assert.Equal(t, []domain.LLMSettings{
		{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "o-key"},
		{Provider: domain.AIProviderOllama},
	}, settings.LLMFallbacks)
}

func TestSettingsService_APIKeyTable(t *testing.T) {
	svc, store := newSettings(nil)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("api_keys.anthropic", "from-file"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "from-file", settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	svc, store := newSettings(map[string]string{"OPENAI_API_KEY": "env-key"})
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini", APIKey: "env-key"}
	settings.LLMFallbacks = []domain.LLMSettings{{Provider: domain.AIProviderOllama, Model: "llama3.2"}}
	settings.Fetch.TotalBudget = 20 * time.Second

	require.NoError(t, svc.Save(&settings))

	_, stored := store.Get("llm.api_key")
	assert.False(t, stored, "environment keys are not persisted")
	assert.Equal(t, []string{"ollama:llama3.2"}, store.GetStringSlice("llm.fallback"))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.LLM, got.LLM)
	assert.Equal(t, 20*time.Second, got.Fetch.TotalBudget)
	assert.Equal(t, settings.Chunking, got.Chunking)
	require.Len(t, got.LLMFallbacks, 1)
	assert.Equal(t, "llama3.2", got.LLMFallbacks[0].Model)
}

func TestSettingsService_SaveExplicitKey(t *testing.T) {
	svc, store := newSettings(nil)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "typed-in"}

	require.NoError(t, svc.Save(&settings))

	assert.Equal(t, "typed-in", store.GetString("llm.api_key"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		model    string
		apiKey   string
		wantErr  bool
		wantDims int
		wantURL  string
	}{
		{name: "ollama default model", provider: domain.AIProviderOllama, wantDims: 768, wantURL: "http://localhost:11434"},
		{name: "openai with key", provider: domain.AIProviderOpenAI, apiKey: "k", wantDims: 1536},
		{name: "local", provider: domain.AIProviderLocal, wantDims: 384},
		{name: "openai without key", provider: domain.AIProviderOpenAI, wantErr: true},
		{name: "anthropic cannot embed", provider: domain.AIProviderAnthropic, apiKey: "k", wantErr: true},
		{name: "unknown", provider: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newSettings(nil)

			err := svc.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			settings, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, domain.DefaultEmbeddingModels()[tt.provider], settings.Embedding.Model)
			assert.Equal(t, tt.wantDims, settings.Embedding.Dimensions)
			assert.Equal(t, tt.wantURL, settings.Embedding.BaseURL)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	svc, _ := newSettings(map[string]string{"ANTHROPIC_API_KEY": "a-key"})

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, "", ""))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, "a-key", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)

	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderLocal, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetChunking(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 400, 40, false},
		{"no overlap", 400, 0, false},
		{"overlap equals size", 400, 400, true},
		{"negative overlap", 400, -1, true},
		{"zero size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSettings(nil)

			err := svc.SetChunking(tt.size, tt.overlap)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				_, stored := store.Get("chunking.size")
				assert.False(t, stored)
				return
			}
			require.NoError(t, err)
			settings, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, domain.ChunkSettings{Size: tt.size, Overlap: tt.overlap}, settings.Chunking)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{name: "defaults"},
		{name: "bad chunking", values: map[string]any{"chunking.size": 100, "chunking.overlap": 100}, wantErr: domain.ErrInvalidInput},
		{name: "openai embedding without key", values: map[string]any{"embedding.provider": "openai"}, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "zero top_k", values: map[string]any{"retrieval.top_k": 0}, wantErr: domain.ErrInvalidInput},
		{name: "unknown backend", values: map[string]any{"storage.backend": "redis"}, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSettings(nil)
			for k, v := range tt.values {
				require.NoError(t, store.Set(k, v))
			}

			err := svc.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("llm.provider", "ollama"))
	validator := &mockValidator{err: errors.New("unreachable")}
	svc := NewSettingsService(store, validator).WithEnv(envOf(nil))

	assert.EqualError(t, svc.ValidateEmbeddingConfig(), "unreachable")
	assert.Equal(t, domain.AIProviderLocal, validator.embedding.Provider)
	assert.EqualError(t, svc.ValidateLLMConfig(), "unreachable")
	assert.Equal(t, domain.AIProviderOllama, validator.llm.Provider)

	noValidator, _ := newSettings(nil)
	assert.NoError(t, noValidator.ValidateEmbeddingConfig())
	assert.NoError(t, noValidator.ValidateLLMConfig())
}
