// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Dataset: A tenant's knowledge base and its backing collection
//   - Artifact: Opaque bytes (an uploaded file) before normalisation
//   - Document: One normalised artifact within a dataset
//   - Passage: A bounded, overlapping span of a document stored for retrieval
//   - RetrievalResult: A ranked passage returned for a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
