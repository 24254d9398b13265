package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type stubNormaliser struct {
	formats []string
	text    string
	err     error
}

func (s *stubNormaliser) Formats() []string { return s.formats }
func (s *stubNormaliser) Normalise(context.Context, *domain.Artifact) (string, error) {
	return s.text, s.err
}

func TestRegistry_DispatchAndClean(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{formats: []string{"txt"}, text: "  hello \tworld\n\n\n\nbye  "})

	text, err := r.Normalise(context.Background(), &domain.Artifact{Name: "a.TXT"})

	require.NoError(t, err)
	assert.Equal(t, "hello world\n\nbye", text)
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Normalise(context.Background(), &domain.Artifact{Name: "slides.key", Content: []byte("x")})

	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestRegistry_PropagatesError(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{formats: []string{"pdf"}, err: domain.ErrExtractionFailure})

	_, err := r.Normalise(context.Background(), &domain.Artifact{Name: "scan.pdf"})

	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.Contains(t, err.Error(), "scan.pdf")
}

func TestRegistry_NilArtifact(t *testing.T) {
	_, err := NewRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDefaultRegistry_Formats(t *testing.T) {
	assert.Equal(t, SupportedFormats, NewDefaultRegistry().SupportedFormats())
}

func TestNewDefaultRegistry_Text(t *testing.T) {
	text, err := NewDefaultRegistry().Normalise(context.Background(), &domain.Artifact{
		Name:    "notes.txt",
		Content: []byte("line one\n\n\n\nline\ttwo\xff"),
	})

	require.NoError(t, err)
	assert.Equal(t, "line one\n\nline two", text)
}

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.pptx", "d.csv", "e.xlsx", "f.txt"} {
		assert.True(t, IsSupported(name), name)
	}
	for _, name := range []string{"a.doc", "b.md", "noext", "c.html"} {
		assert.False(t, IsSupported(name), name)
	}
}
