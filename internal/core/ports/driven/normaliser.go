package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Normaliser extracts plain text from artifacts of specific formats.
type Normaliser interface {
	// Formats returns the format tags this normaliser handles (e.g., "pdf").
	Formats() []string

	// Normalise extracts text from the artifact.
	// The registry applies the shared cleanup pass to the result.
	Normalise(ctx context.Context, artifact *domain.Artifact) (string, error)
}
