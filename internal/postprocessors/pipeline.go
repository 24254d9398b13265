// Package postprocessors turns normalised document text into passages.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs passage stages in order. The first stage gets nil and
// creates passages from the document; later stages rewrite them.
type Pipeline struct {
	stages []driven.PostProcessor
}

func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process returns the passages left after the last stage. Blank passages
// are dropped after every stage, and the run stops early once none remain.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]string, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var passages []string
	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, passages)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		passages = dropBlank(out)
		if len(passages) == 0 && i > 0 {
			return nil, nil
		}
	}
	return passages, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Names lists the stages in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name())
	}
	return names
}

func dropBlank(passages []string) []string {
	kept := passages[:0:0]
	for _, s := range passages {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return kept
}
