package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// AIConfigValidator checks that configured providers answer before the
// settings commands report success.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
