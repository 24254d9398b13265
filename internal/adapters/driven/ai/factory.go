// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"errors"
	"fmt"

	ollamacaption "github.com/custodia-labs/sercha-rag/internal/adapters/driven/caption/ollama"
	localembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Capabilities holds the AI services built from settings.
type Capabilities struct {
	// Embedder is always set when NewCapabilities succeeds.
	Embedder driven.EmbeddingService

	// Generators are tried in order. Empty when no generation backend is configured.
	Generators []driven.LLMService

	// Captioner is nil when no vision model is configured.
	Captioner driven.Captioner

	// Warnings lists configured backends that could not be built.
	Warnings []string
}

// NewCapabilities builds every configured service. An unusable embedder is
// an error because ingestion and retrieval both need it. Generation backends
// that fail to build are skipped with a warning.
func NewCapabilities(settings *domain.AppSettings) (*Capabilities, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'sercha-rag settings' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'sercha-rag settings' to fix",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	caps := &Capabilities{Embedder: embedder}

	backends := append([]domain.LLMSettings{settings.LLM}, settings.LLMFallbacks...)
	for i := range backends {
		b := &backends[i]
		if b.Provider == "" {
			continue
		}
		svc, err := CreateLLMService(b)
		switch {
		case err != nil:
			caps.Warnings = append(caps.Warnings, fmt.Sprintf("llm %s: %v", b.Provider, err))
		case svc == nil:
			caps.Warnings = append(caps.Warnings, fmt.Sprintf("llm %s: not configured", b.Provider))
		default:
			caps.Generators = append(caps.Generators, svc)
		}
	}

	if settings.Caption.IsConfigured() {
		caps.Captioner = ollamacaption.NewCaptioner(ollamacaption.Config{
			BaseURL: settings.Caption.BaseURL,
			Model:   settings.Caption.Model,
		})
	}

	return caps, nil
}

// Close releases all resources held by the services.
func (c *Capabilities) Close() error {
	var errs []error
	if c.Embedder != nil {
		errs = append(errs, c.Embedder.Close())
	}
	for _, g := range c.Generators {
		errs = append(errs, g.Close())
	}
	return errors.Join(errs...)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider.IsValid() && !settings.Provider.SupportsEmbeddings() {
		return nil, fmt.Errorf("%s does not support embeddings, use local, ollama or openai", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider.IsValid() && !settings.Provider.SupportsGeneration() {
		return nil, fmt.Errorf("%s does not support generation", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
