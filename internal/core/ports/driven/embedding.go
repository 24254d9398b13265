package driven

import "context"

// EmbeddingService maps text to vectors. Passages at ingestion and
// questions at retrieval go through the same service, so a collection is
// only searchable with the embedder that filled it.
//
// Backends: local feature hashing, Ollama and OpenAI.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length every call returns.
	Dimensions() int

	ModelName() string

	// Ping makes the cheapest request the backend allows.
	Ping(ctx context.Context) error

	Close() error
}
