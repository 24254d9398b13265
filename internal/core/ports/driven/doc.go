// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Extracts cleaned text from one artifact format
//   - NormaliserRegistry: Dispatches artifacts by format tag
//   - PostProcessorPipeline: Splits document text into passages
//   - VectorStore: Per-collection passage and vector storage
//   - EmbeddingService: Generates vector embeddings
//   - CollectionLocker: Serialises writers per collection
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generation. Without it answers carry a placeholder.
//   - Captioner: Image captioning. Without it image questions use no extra context.
//   - WebFetcher: Single page fetch. Without it URL ingestion is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
