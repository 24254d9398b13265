package driving

import "context"

// AnswerService answers questions grounded in retrieved passages.
// Methods never fail: problems surface as placeholder text in the answer.
type AnswerService interface {
	// Ask retrieves passages from the collection and answers the question.
	// Extra context blocks are appended after retrieved passages.
	Ask(ctx context.Context, collection, question string, extraContext ...string) string

	// AnswerWithContext answers using the given context only.
	AnswerWithContext(ctx context.Context, question, contextText string) string

	// AskWithImage captions the image and uses the caption as extra context.
	AskWithImage(ctx context.Context, collection string, image []byte, mimeType, question string) string
}
