package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds a single provider reachability check.
const DefaultPingTimeout = 5 * time.Second

// ConfigValidator builds a throwaway client from settings and pings it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultPingTimeout}
}

// WithTimeout returns a copy of v with a different ping timeout.
// Non-positive values keep the current timeout.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	c := *v
	if d > 0 {
		c.timeout = d
	}
	return &c
}

// pinger is the part of every AI client the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ValidateEmbedding fails with ErrEmbeddingUnavailable when no provider is
// configured, otherwise with the client's build or ping error.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: embedding provider not configured", domain.ErrEmbeddingUnavailable)
	}
	return v.ping(svc)
}

// ValidateLLM fails with ErrGenerationUnavailable when no provider is
// configured, otherwise with the client's build or ping error.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: llm provider not configured", domain.ErrGenerationUnavailable)
	}
	return v.ping(svc)
}

func (v *ConfigValidator) ping(svc pinger) error {
	defer svc.Close() //nolint:errcheck // validation client is discarded

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
