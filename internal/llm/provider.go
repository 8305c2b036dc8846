// Package llm abstracts the model provider behind a small interface and turns
// raw model output into structured findings.
package llm

import (
	"context"
	"fmt"
)

// GenerateRequest contains the data sent to a model for one completion.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// GenerateResponse contains the raw response from a model.
type GenerateResponse struct {
	Content    string
	TokensUsed int
}

// Provider is the model provider abstraction.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// Options configure provider construction.
type Options struct {
	Model  string
	Host   string
	APIKey string
}

// New creates a provider by name.
func New(provider string, opts Options) (Provider, error) {
	switch provider {
	case "ollama", "lmstudio", "openai-compatible":
		return NewOpenAICompatible(provider, opts), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
