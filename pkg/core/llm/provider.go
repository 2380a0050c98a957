package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by provider constructors when the required
// API key environment variable was not configured.
var ErrMissingAPIKey = errors.New("LLM API key is not set")

// Provider is the interface for all LLM providers. The model is an untyped
// external function: it takes prompts and returns an opaque string that the
// sanitizer is responsible for making sense of.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Embedder converts text passages to vectors for the retrieval index.
// Implementations batch where the backing API allows it; the returned slice
// is parallel to the input.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
