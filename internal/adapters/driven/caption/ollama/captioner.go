// Package ollama provides an image captioner backed by an Ollama vision model.
package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Captioner implements the interface.
var _ driven.Captioner = (*Captioner)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llava"
	DefaultTimeout = 120 * time.Second

	// MaxTokens keeps captions to a short sentence.
	MaxTokens = 40

	captionPrompt = "Describe this image in one short sentence."
)

// Config holds configuration for the captioner.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Captioner describes images with /api/generate and base64 image input.
type Captioner struct {
	api     *httpapi.Client
	baseURL string
	model   string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Images  []string `json:"images"`
	Stream  bool     `json:"stream"`
	Options struct {
		NumPredict int `json:"num_predict"`
	} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewCaptioner creates a new Ollama captioner.
func NewCaptioner(cfg Config) *Captioner {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Captioner{
		api:     httpapi.New("ollama", cfg.Timeout, nil),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Caption returns a one-sentence description of image. mimeType is not
// needed by Ollama, which sniffs the encoded bytes.
func (c *Captioner) Caption(ctx context.Context, image []byte, _ string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	req := generateRequest{
		Model:  c.model,
		Prompt: captionPrompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
	}
	req.Options.NumPredict = MaxTokens

	var resp generateResponse
	if err := c.api.PostJSON(ctx, c.baseURL+"/api/generate", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// ModelName returns the vision model name.
func (c *Captioner) ModelName() string {
	return c.model
}
