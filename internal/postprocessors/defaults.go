package postprocessors

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

const chunkerStage = "chunker"

// RegisterDefaults adds the built-in passage stages to r.
func RegisterDefaults(r *Registry) {
	r.Register(chunkerStage, buildChunker)
}

// NewDefaultPipeline validates the chunk settings and builds the default
// stages from them.
func NewDefaultPipeline(cfg domain.ChunkSettings) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	RegisterDefaults(r)
	return r.Pipeline(cfg, DefaultStages...)
}

// buildChunker maps chunk settings onto chunker options. Zero size keeps
// the chunker default; overlap is always taken as given.
func buildChunker(cfg domain.ChunkSettings) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if cfg.Size > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.Size))
	}
	opts = append(opts, chunker.WithOverlap(cfg.Overlap))
	return chunker.New(opts...), nil
}
