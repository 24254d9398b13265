// Package local provides an offline embedding service based on feature
// hashing. It needs no model download and no network, which keeps ingestion
// and retrieval usable before a real provider is configured.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 384

// EmbeddingService hashes word unigrams and bigrams into a fixed-size,
// L2-normalised vector. Texts sharing vocabulary score higher under cosine.
type EmbeddingService struct {
	dimensions int
	fold       cases.Caser
}

// NewEmbeddingService creates a hashing embedder. dimensions <= 0 selects
// DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: dimensions,
		fold:       cases.Fold(),
	}
}

// Embed hashes text into a vector. Text without any word yields the zero vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	return s.vector(text), nil
}

// EmbedBatch embeds each text independently.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = s.vector(t)
	}
	return vectors, nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	acc := make([]float64, s.dimensions)
	words := Tokens(s.fold.String(norm.NFKC.String(text)))

	for i, w := range words {
		s.add(acc, w, 1)
		if i > 0 {
			s.add(acc, words[i-1]+" "+w, 0.5)
		}
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	out := make([]float32, s.dimensions)
	if sum == 0 {
		return out
	}
	n := math.Sqrt(sum)
	for i, v := range acc {
		out[i] = float32(v / n)
	}
	return out
}

// add folds one feature into acc. The top hash bit picks the sign so
// collisions tend to cancel.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

// Tokens splits text into runs of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns "hash-<dimensions>".
func (s *EmbeddingService) ModelName() string {
	return "hash-" + strconv.Itoa(s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
