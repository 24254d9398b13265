package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// upperStage uppercases every passage it receives.
type upperStage struct{}

func (upperStage) Name() string { return "upper" }
func (upperStage) Process(_ context.Context, _ *domain.Document, passages []string) ([]string, error) {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p + "!"
	}
	return out, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
	assert.False(t, r.Has(chunkerStage))
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.True(t, r.Has(chunkerStage))
	assert.Equal(t, []string{"chunker"}, r.Names())
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		r.Register(n, nil)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRegistry_Pipeline_ChainsInOrder(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	r.Register("upper", func(domain.ChunkSettings) (driven.PostProcessor, error) {
		return upperStage{}, nil
	})

	p, err := r.Pipeline(domain.ChunkSettings{Size: 100, Overlap: 0}, "chunker", "upper")
	require.NoError(t, err)
	assert.Equal(t, []string{"chunker", "upper"}, p.Names())

	passages, err := p.Process(context.Background(), &domain.Document{Content: "Rome is in Italy."})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rome is in Italy.!"}, passages)
}

func TestRegistry_Pipeline_Errors(t *testing.T) {
	buildErr := errors.New("boom")
	r := NewRegistry()
	r.Register("broken", func(domain.ChunkSettings) (driven.PostProcessor, error) {
		return nil, buildErr
	})

	tests := []struct {
		name   string
		stages []string
		target error
	}{
		{"no stages", nil, domain.ErrInvalidInput},
		{"unknown stage", []string{"nope"}, domain.ErrInvalidInput},
		{"builder failure", []string{"broken"}, buildErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Pipeline(domain.ChunkSettings{Size: 100}, tt.stages...)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name        string
		cfg         domain.ChunkSettings
		wantSize    int
		wantOverlap int
	}{
		{"zero size keeps default", domain.ChunkSettings{Overlap: 100}, chunker.DefaultChunkSize, 100},
		{"explicit values", domain.ChunkSettings{Size: 300, Overlap: 30}, 300, 30},
		{"zero overlap", domain.ChunkSettings{Size: 500}, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := buildChunker(tt.cfg)
			require.NoError(t, err)

			c, ok := proc.(*chunker.Processor)
			require.True(t, ok)
			assert.Equal(t, tt.wantSize, c.ChunkSize())
			assert.Equal(t, tt.wantOverlap, c.Overlap())
		})
	}
}

func TestNewDefaultPipeline(t *testing.T) {
	p, err := NewDefaultPipeline(domain.ChunkSettings{Size: 40, Overlap: 5})
	require.NoError(t, err)
	assert.Equal(t, DefaultStages, p.Names())

	passages, err := p.Process(context.Background(), &domain.Document{
		Content: "Paris is the capital of France.\n\nBerlin is the capital of Germany.",
	})
	require.NoError(t, err)
	assert.Len(t, passages, 2)
}

func TestNewDefaultPipeline_InvalidSettings(t *testing.T) {
	_, err := NewDefaultPipeline(domain.ChunkSettings{Size: 10, Overlap: 10})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
