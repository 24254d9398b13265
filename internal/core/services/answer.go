package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Context assembly and placeholder answers.
const (
	ContextDelimiter = "\n\n---\n\n"
	NoContextMarker  = "(no context)"
	NoResponse       = "(no response)"

	generationErrorPrefix = "(generation error) "
	retrievalErrorPrefix  = "(retrieval error) "

	// DefaultImageQuestion is asked when an image arrives without a question.
	DefaultImageQuestion = "What does this image show?"
)

// groundingPrompt directs the model to answer from the context only.
const groundingPrompt = `You are a precise, grounded assistant.
Use ONLY the provided context to answer the question.
If the answer is not in the context, say "I don't have enough information."

Question:
%s

Context:
%s

Answer:
`

// GroundingPrompt renders the prompt sent to the language model.
func GroundingPrompt(question, contextText string) string {
	return fmt.Sprintf(groundingPrompt, question, contextText)
}

// Retriever returns passages ranked by similarity to a query.
type Retriever interface {
	Search(ctx context.Context, collection, query string, k int) ([]domain.RetrievalResult, error)
}

// AnswerService answers questions from retrieved passages.
// Generators are tried in order until one returns text.
type AnswerService struct {
	retriever  Retriever
	generators []driven.LLMService
	captioner  driven.Captioner
	topK       int
	maxBlocks  int
	opts       driven.GenerateOptions
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithRetrieval sets the number of retrieved passages and the block cap.
// Non-positive values keep the defaults.
func WithRetrieval(settings domain.RetrievalSettings) AnswerOption {
	return func(s *AnswerService) {
		if settings.TopK > 0 {
			s.topK = settings.TopK
		}
		if settings.MaxBlocks > 0 {
			s.maxBlocks = settings.MaxBlocks
		}
	}
}

// WithCaptioner enables image-grounded questions.
func WithCaptioner(c driven.Captioner) AnswerOption {
	return func(s *AnswerService) {
		s.captioner = c
	}
}

// WithGenerateOptions sets options passed to every generator.
func WithGenerateOptions(opts driven.GenerateOptions) AnswerOption {
	return func(s *AnswerService) {
		s.opts = opts
	}
}

// NewAnswerService creates an answer service.
func NewAnswerService(retriever Retriever, generators []driven.LLMService, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		retriever:  retriever,
		generators: generators,
		topK:       domain.DefaultTopK,
		maxBlocks:  domain.DefaultMaxContextBlocks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask retrieves passages for question and answers from them. Extra context
// blocks follow the retrieved passages. Failures are returned as text.
func (s *AnswerService) Ask(ctx context.Context, collection, question string, extraContext ...string) string {
	defer logger.Section("Ask")()
	logger.Debug("Question for %s: %q", collection, question)

	results, err := s.retriever.Search(ctx, collection, question, s.topK)
	if err != nil {
		// Answering without the retrieved context would be ungrounded.
		logger.Error("Retrieval failed for %s: %v", collection, err)
		return retrievalErrorPrefix + err.Error()
	}
	logger.Debug("Retrieved %d passages", len(results))
	if logger.Enabled(logger.LevelDebug) {
		for i, r := range results {
			logger.Debug("  [%d] %s #%d (%.3f)", i+1, r.Metadata.Source, r.Metadata.Ordinal, r.Score)
		}
	}

	blocks := domain.Texts(results)
	for _, extra := range extraContext {
		if strings.TrimSpace(extra) != "" {
			blocks = append(blocks, extra)
		}
	}

	return s.AnswerWithContext(ctx, question, s.assemble(blocks))
}

// assemble joins at most maxBlocks blocks, or returns the no-context marker.
func (s *AnswerService) assemble(blocks []string) string {
	if len(blocks) > s.maxBlocks {
		blocks = blocks[:s.maxBlocks]
	}
	if len(blocks) == 0 {
		return NoContextMarker
	}
	return strings.Join(blocks, ContextDelimiter)
}

// AnswerWithContext answers question from context without retrieval.
func (s *AnswerService) AnswerWithContext(ctx context.Context, question, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		contextText = NoContextMarker
	}
	return s.generate(ctx, GroundingPrompt(question, contextText))
}

// generate tries each generator in order. A generator that errors or
// returns nothing hands over to the next.
func (s *AnswerService) generate(ctx context.Context, prompt string) string {
	if len(s.generators) == 0 {
		return generationErrorPrefix + domain.ErrGenerationUnavailable.Error()
	}

	var failures []string
	for _, g := range s.generators {
		out, err := g.Generate(ctx, prompt, s.opts)
		if err != nil {
			logger.Warn("Generation with %s failed: %v", g.ModelName(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", g.ModelName(), err))
			continue
		}
		if out = strings.TrimSpace(out); out != "" {
			return out
		}
		logger.Warn("Generation with %s returned no text", g.ModelName())
	}

	if len(failures) == 0 {
		return NoResponse
	}
	return generationErrorPrefix + strings.Join(failures, "; ")
}

// AskWithImage captions image and asks with the caption as extra context.
// Without a captioner, or when captioning fails, the question is asked
// with retrieval context only.
func (s *AnswerService) AskWithImage(
	ctx context.Context, collection string, image []byte, mimeType, question string,
) string {
	if strings.TrimSpace(question) == "" {
		question = DefaultImageQuestion
	}

	if s.captioner == nil {
		logger.Debug("No captioner configured, asking without image context")
		return s.Ask(ctx, collection, question)
	}

	caption, err := s.captioner.Caption(ctx, image, mimeType)
	if err != nil || strings.TrimSpace(caption) == "" {
		logger.Warn("Captioning with %s failed: %v", s.captioner.ModelName(), err)
		return s.Ask(ctx, collection, question)
	}

	logger.Debug("Caption: %q", caption)
	return s.Ask(ctx, collection, question, "Image caption: "+caption)
}
