package ai

import (
	"context"
	"errors"
)

var (
	// ErrNoAPIKey is returned by hosted providers that were configured without a key
	ErrNoAPIKey = errors.New("API key not configured")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("empty response from model")
)

// Request is a single prompt sent to a language model
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Provider is a text generation backend (Gemini, OpenAI, Ollama)
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
