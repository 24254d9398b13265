package driven

import "context"

// LLMService turns an assembled prompt into an answer. The answer service
// holds an ordered list of these and falls through on error or empty text.
//
// Backends: OpenAI-compatible endpoints, Anthropic, Gemini and Ollama.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName identifies the backend in logs and in aggregated errors.
	ModelName() string

	// Ping makes the cheapest request the backend allows.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions are passed through to every backend. Zero values leave
// the backend's own default in place.
type GenerateOptions struct {
	MaxTokens int

	// Temperature of 0 means the backend default, not greedy decoding.
	Temperature float64

	// StopWords end generation at the first match.
	StopWords []string
}
