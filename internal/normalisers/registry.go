package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps format tags to normalisers.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make(map[string]driven.Normaliser),
	}
}

// Register adds a normaliser for each of its formats.
// A later registration for the same format replaces the earlier one.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, format := range n.Formats() {
		r.normalisers[format] = n
	}
}

// SupportedFormats returns all registered format tags, sorted.
func (r *Registry) SupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.normalisers))
	for format := range r.normalisers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Normalise dispatches the artifact by format tag and cleans the result.
func (r *Registry) Normalise(ctx context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}

	format := artifact.FormatTag()
	r.mu.RLock()
	n, ok := r.normalisers[format]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, format, artifact.Name)
	}

	text, err := n.Normalise(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("normalise %s: %w", artifact.Name, err)
	}

	cleaned := Clean(text)
	logger.Debug("normalised %s as %s: %d bytes of text", artifact.Name, format, len(cleaned))
	return cleaned, nil
}
