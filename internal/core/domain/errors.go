package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	// It is caller-fixable and surfaced immediately.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailure indicates a format parser exhausted its fallbacks.
	ErrExtractionFailure = errors.New("no readable text")

	// ErrNoDocuments indicates a fetch produced nothing to ingest.
	// This is a normal outcome, reported to the user rather than treated as a fault.
	ErrNoDocuments = errors.New("no documents found")

	// ErrFetchRejected indicates a URL or response was refused by the fetch policy.
	ErrFetchRejected = errors.New("fetch rejected")

	// Retrieval Errors.

	// ErrRetrievalUnavailable indicates the vector store could not be reached.
	// A caller cannot safely fall back to answering ungrounded.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Generation Errors.

	// ErrGenerationUnavailable indicates no language model is configured.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrGenerationFailure indicates a language model call failed or returned nothing.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrCaptionUnavailable indicates no image captioner is configured.
	ErrCaptionUnavailable = errors.New("caption service unavailable")
)
