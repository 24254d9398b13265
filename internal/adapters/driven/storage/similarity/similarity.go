// Package similarity ranks stored passages against a query vector.
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK sorts results by descending score and keeps at most k.
// Ties are ordered by document key then ordinal so ranking is deterministic.
func TopK(results []domain.RetrievalResult, k int) []domain.RetrievalResult {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Metadata.DocumentKey != b.Metadata.DocumentKey {
			return a.Metadata.DocumentKey < b.Metadata.DocumentKey
		}
		return a.Metadata.Ordinal < b.Metadata.Ordinal
	})
	if k < 0 {
		k = 0
	}
	if k < len(results) {
		results = results[:k]
	}
	return results
}
