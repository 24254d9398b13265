package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// NormaliserRegistry selects the normaliser for an artifact by format tag.
type NormaliserRegistry interface {
	// Normalise dispatches the artifact and returns cleaned text.
	// Returns domain.ErrUnsupportedFormat for unknown tags.
	Normalise(ctx context.Context, artifact *domain.Artifact) (string, error)

	// Register adds a normaliser for each of its formats.
	Register(normaliser Normaliser)

	// SupportedFormats returns all registered format tags, sorted.
	SupportedFormats() []string
}
