package domain

import (
	"fmt"
	"time"
)

// Document represents one ingested artifact within a dataset.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier assigned at normalisation time.
	ID string

	// Key is the document key, unique within its dataset and stable for
	// the life of the artifact. Re-ingesting with the same key replaces
	// the previous passages.
	Key string

	// DatasetID is the owning dataset, when known.
	DatasetID string

	// Source is the human-readable source label (file name or URL).
	Source string

	// Format is the format tag the document was normalised from.
	Format string

	// Content is the full cleaned text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was normalised.
	CreatedAt time.Time
}

// Passage is a contiguous, bounded span of a document's normalised text.
// Passages are immutable once stored.
type Passage struct {
	// ID is the storage identifier, see PassageID.
	ID string

	// Content is the passage text, including any leading overlap.
	Content string

	// Metadata locates the passage within its dataset and document.
	Metadata PassageMetadata

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// PassageMetadata is stored alongside each passage.
type PassageMetadata struct {
	// DocumentKey is the key of the owning document.
	DocumentKey string `json:"doc_id"`

	// Source is the file name or URL of the owning document.
	Source string `json:"source"`

	// Ordinal is the zero-based index within the document.
	Ordinal int `json:"idx"`

	// DatasetID is the owning dataset. Empty when the caller only knows
	// the collection name.
	DatasetID string `json:"dataset_id,omitempty"`
}

// PassageID returns the deterministic storage identifier of a passage.
func PassageID(documentKey string, ordinal int) string {
	return fmt.Sprintf("%s::%d", documentKey, ordinal)
}
