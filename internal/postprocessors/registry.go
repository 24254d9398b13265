package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// StageBuilder constructs one passage stage from the chunk settings.
type StageBuilder func(cfg domain.ChunkSettings) (driven.PostProcessor, error)

// Registry holds the passage stages known to the ingestion pipeline,
// keyed by the stage name.
type Registry struct {
	stages map[string]StageBuilder
}

// NewRegistry returns an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]StageBuilder)}
}

// Register binds a stage name to its builder, replacing any previous binding.
func (r *Registry) Register(name string, build StageBuilder) {
	r.stages[name] = build
}

// Has reports whether a stage is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.stages[name]
	return ok
}

// Names lists the registered stages in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stages))
	for name := range r.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pipeline builds the named stages in order and chains them.
// An empty stage list or an unknown name is rejected.
func (r *Registry) Pipeline(cfg domain.ChunkSettings, stages ...string) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no passage stages", domain.ErrInvalidInput)
	}

	p := NewPipeline()
	for _, name := range stages {
		build, ok := r.stages[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown passage stage %q (have %v)",
				domain.ErrInvalidInput, name, r.Names())
		}
		stage, err := build(cfg)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		p.Add(stage)
	}
	return p, nil
}

// DefaultStages is the stage order used for every ingested document.
var DefaultStages = []string{chunkerStage}
