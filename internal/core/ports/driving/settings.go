package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService reads and updates the provider, chunking and storage
// settings behind the CLI.
type SettingsService interface {
	// Get returns stored values with defaults filled in and environment
	// overrides applied on top.
	Get() (*domain.AppSettings, error)

	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider fills the model's known dimensions when the
	// model is recognised.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetChunking rejects overlap >= size before storing anything.
	SetChunking(size, overlap int) error

	// Validate checks the settings without contacting any provider.
	Validate() error

	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider. They succeed without a validator.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
