package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMFallback     = "llm.fallback"
	keyCaptionProvider = "caption.provider"
	keyCaptionModel    = "caption.model"
	keyCaptionBaseURL  = "caption.base_url"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyTopK            = "retrieval.top_k"
	keyMaxBlocks       = "retrieval.max_blocks"
	keyFetchBudget     = "fetch.total_budget"
	keyFetchTimeout    = "fetch.request_timeout"
	keyFetchMaxBytes   = "fetch.max_bytes"
	keyFetchRate       = "fetch.requests_per_second"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyAPIKeyPrefix    = "api_keys."
)

// EnvPrefix prefixes environment overrides, e.g. SERCHA_RAG_LLM_PROVIDER
// overrides llm.provider.
const EnvPrefix = "SERCHA_RAG_"

// providerKeyEnv names the conventional API key variable per provider.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderGemini:    "GEMINI_API_KEY",
}

// SettingsService resolves application settings from the config store with
// environment overrides on top.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get retrieves current application settings.
// Precedence: environment, then config file, then defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.provider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.str(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.str(keyEmbedBaseURL, ""),
			APIKey:     s.str(keyEmbedAPIKey, ""),
			Dimensions: s.integer(keyEmbedDimensions, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.provider(keyLLMProvider, d.LLM.Provider),
			Model:    s.str(keyLLMModel, d.LLM.Model),
			BaseURL:  s.str(keyLLMBaseURL, ""),
			APIKey:   s.str(keyLLMAPIKey, ""),
		},
		Caption: domain.CaptionSettings{
			Provider: s.provider(keyCaptionProvider, d.Caption.Provider),
			Model:    s.str(keyCaptionModel, d.Caption.Model),
			BaseURL:  s.str(keyCaptionBaseURL, ""),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.integer(keyChunkSize, d.Chunking.Size),
			Overlap: s.integer(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:      s.integer(keyTopK, d.Retrieval.TopK),
			MaxBlocks: s.integer(keyMaxBlocks, d.Retrieval.MaxBlocks),
		},
		Fetch: domain.FetchSettings{
			TotalBudget:       s.duration(keyFetchBudget, d.Fetch.TotalBudget),
			RequestTimeout:    s.duration(keyFetchTimeout, d.Fetch.RequestTimeout),
			MaxBytes:          int64(s.integer(keyFetchMaxBytes, int(d.Fetch.MaxBytes))),
			RequestsPerSecond: s.float(keyFetchRate, d.Fetch.RequestsPerSecond),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.str(keyStorageBackend, string(d.Storage.Backend))),
			DataDir: s.str(keyStorageDataDir, ""),
		},
	}

	// GEMINI_MODEL is the conventional override for Gemini deployments.
	if settings.LLM.Provider == domain.AIProviderGemini && settings.LLM.Model == "" {
		settings.LLM.Model = s.getenv("GEMINI_MODEL")
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.apiKey(settings.LLM.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.apiKey(settings.Embedding.Provider)
	}

	for _, entry := range s.list(keyLLMFallback) {
		provider, model, _ := strings.Cut(entry, ":")
		p := domain.AIProvider(strings.TrimSpace(provider))
		if !p.IsValid() {
			continue
		}
		settings.LLMFallbacks = append(settings.LLMFallbacks, domain.LLMSettings{
			Provider: p,
			Model:    strings.TrimSpace(model),
			APIKey:   s.apiKey(p),
		})
	}

	return settings, nil
}

// Save persists application settings. API keys are only written when set,
// so keys supplied through the environment never land on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyCaptionProvider, settings.Caption.Provider.String()},
		{keyCaptionModel, settings.Caption.Model},
		{keyCaptionBaseURL, settings.Caption.BaseURL},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxBlocks, settings.Retrieval.MaxBlocks},
		{keyFetchBudget, settings.Fetch.TotalBudget},
		{keyFetchTimeout, settings.Fetch.RequestTimeout},
		{keyFetchMaxBytes, int(settings.Fetch.MaxBytes)},
		{keyFetchRate, settings.Fetch.RequestsPerSecond},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
	}

	fallbacks := make([]string, 0, len(settings.LLMFallbacks))
	for _, f := range settings.LLMFallbacks {
		entry := f.Provider.String()
		if f.Model != "" {
			entry += ":" + f.Model
		}
		fallbacks = append(fallbacks, entry)
	}
	values = append(values, struct {
		key   string
		value any
	}{keyLLMFallback, fallbacks})

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.envKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the embedder requires re-ingesting existing datasets.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.apiKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.APIKey = apiKey
	settings.Embedding.BaseURL = localBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	if provider == domain.AIProviderLocal {
		settings.Embedding.Dimensions = domain.DefaultAppSettings().Embedding.Dimensions
	}

	return s.Save(settings)
}

// SetLLMProvider configures the primary LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsGeneration() {
		return fmt.Errorf("%w: provider %s does not support generation", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.apiKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.APIKey = apiKey
	settings.LLM.BaseURL = localBaseURL(provider, settings.LLM.BaseURL)

	return s.Save(settings)
}

// SetChunking configures passage size and overlap.
func (s *SettingsService) SetChunking(size, overlap int) error {
	chunking := domain.ChunkSettings{Size: size, Overlap: overlap}
	if err := chunking.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(keyChunkSize, size); err != nil {
		return fmt.Errorf("save %s: %w", keyChunkSize, err)
	}
	if err := s.configStore.Set(keyChunkOverlap, overlap); err != nil {
		return fmt.Errorf("save %s: %w", keyChunkOverlap, err)
	}
	return nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.Retrieval.TopK <= 0 || settings.Retrieval.MaxBlocks <= 0 {
		return fmt.Errorf("%w: retrieval top_k and max_blocks must be positive", domain.ErrInvalidInput)
	}
	switch settings.Storage.Backend {
	case domain.StorageSQLite, domain.StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with environment overrides and defaults.

// envName maps "llm.base_url" to "SERCHA_RAG_LLM_BASE_URL".
func envName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (s *SettingsService) str(key, defaultVal string) string {
	if v := s.getenv(envName(key)); v != "" {
		return v
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) integer(key string, defaultVal int) int {
	if v := s.getenv(envName(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) float(key string, defaultVal float64) float64 {
	if v := s.getenv(envName(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) duration(key string, defaultVal time.Duration) time.Duration {
	if v := s.getenv(envName(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) list(key string) []string {
	if v := s.getenv(envName(key)); v != "" {
		return strings.Split(v, ",")
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) provider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.str(key, ""))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

// apiKey resolves a provider key from the api_keys table or the
// conventional environment variable.
func (s *SettingsService) apiKey(p domain.AIProvider) string {
	if v := s.envKey(p); v != "" {
		return v
	}
	return s.configStore.GetString(keyAPIKeyPrefix + p.String())
}

func (s *SettingsService) envKey(p domain.AIProvider) string {
	name, ok := providerKeyEnv[p]
	if !ok {
		return ""
	}
	return s.getenv(name)
}

// localBaseURL keeps a configured base URL for Ollama and clears it for
// hosted providers, which use their public endpoints.
func localBaseURL(p domain.AIProvider, current string) string {
	if p != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}
