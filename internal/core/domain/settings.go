package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI backend.
type AIProvider string

const (
	// AIProviderOllama uses a local Ollama server.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI uses the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic uses the Anthropic Messages API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini uses the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderLocal uses the built-in feature-hashing embedder.
	// It needs no network and is only valid for embeddings.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the provider is known.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true for hosted providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderLocal
}

// SupportsGeneration returns true if the provider can generate text.
func (p AIProvider) SupportsGeneration() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderLocal:
		return "Local feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns the providers that can produce embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderLocal, AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns the providers that can generate text.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini}
}

// EmbeddingSettings configures the embedding capability.
type EmbeddingSettings struct {
	Provider   AIProvider
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
}

// IsConfigured returns true if the settings can build a service.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures one generation backend.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured returns true if the settings can build a service.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.SupportsGeneration() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CaptionSettings configures the optional image captioner.
// Only Ollama vision models are supported.
type CaptionSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
}

// IsConfigured returns true if a captioner should be built.
func (c CaptionSettings) IsConfigured() bool {
	return c.Provider == AIProviderOllama
}

// ChunkSettings configures passage splitting at ingestion.
type ChunkSettings struct {
	// Size is the target passage length in characters.
	Size int

	// Overlap is the number of trailing characters carried into the next passage.
	Overlap int
}

// Validate enforces overlap < size.
func (c ChunkSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidInput, c.Size, c.Overlap)
	}
	return nil
}

// RetrievalSettings configures context assembly.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int

	// MaxBlocks caps the number of context blocks sent to the model.
	MaxBlocks int
}

// FetchSettings bounds the single-page web fetch.
type FetchSettings struct {
	TotalBudget       time.Duration
	RequestTimeout    time.Duration
	MaxBytes          int64
	RequestsPerSecond float64
}

// StorageBackend selects the vector store implementation.
type StorageBackend string

const (
	// StorageSQLite persists collections in a SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps collections in process memory.
	StorageMemory StorageBackend = "memory"
)

// StorageSettings configures persistence of the vector index.
type StorageSettings struct {
	Backend StorageBackend
	DataDir string
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Embedding EmbeddingSettings

	// LLM is the primary generation backend.
	LLM LLMSettings

	// LLMFallbacks are tried in order when the primary backend fails.
	LLMFallbacks []LLMSettings

	Caption   CaptionSettings
	Chunking  ChunkSettings
	Retrieval RetrievalSettings
	Fetch     FetchSettings
	Storage   StorageSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultChunkSize         = 700
	DefaultChunkOverlap      = 100
	DefaultTopK              = 6
	DefaultMaxContextBlocks  = 10
	DefaultFetchBudget       = 15 * time.Second
	DefaultFetchTimeout      = 5 * time.Second
	DefaultFetchMaxBytes     = 700_000
	DefaultRequestsPerSecond = 2
)

// DefaultAppSettings returns the default application settings.
// The local embedder keeps ingestion working before any provider is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Dimensions: 384,
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:      DefaultTopK,
			MaxBlocks: DefaultMaxContextBlocks,
		},
		Fetch: FetchSettings{
			TotalBudget:       DefaultFetchBudget,
			RequestTimeout:    DefaultFetchTimeout,
			MaxBytes:          DefaultFetchMaxBytes,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// DefaultEmbeddingModels returns the default embedding model per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderLocal:  "hash-384",
	}
}

// DefaultLLMModels returns the default generation model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-flash-latest",
	}
}

// EmbeddingDimensions returns known vector sizes by model name.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"all-minilm":             384,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
