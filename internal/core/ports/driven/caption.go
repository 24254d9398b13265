package driven

import "context"

// Captioner describes an image in text.
type Captioner interface {
	// Caption returns a short description of the image.
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)

	// ModelName returns the vision model name.
	ModelName() string
}
