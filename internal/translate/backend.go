// Package translate wraps the LLM translation backends. A Client batches
// protected item texts into one structured request, parses the id-keyed
// response, restores protected tokens per item, and retries transient
// backend failures with exponential backoff.
package translate

import (
	"context"

	"doc-translator/internal/types"
)

// Backend is one translation provider. Complete sends a system instruction
// plus a user payload and returns the raw response text.
type Backend interface {
	// Name identifies the backend as "provider/model", used in logs and as
	// part of the translation cache key.
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Provider selects a translation backend implementation.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	// ProviderCompat talks to any OpenAI-compatible endpoint (Ollama, vLLM,
	// API gateways) at a custom base URL.
	ProviderCompat Provider = "compat"
)

// Options configures a backend instance.
type Options struct {
	Model string
	// BaseURL overrides the API endpoint. Required for ProviderCompat,
	// optional for ProviderOpenAI, ignored elsewhere.
	BaseURL string
}

// NewBackend creates the backend for the given provider.
func NewBackend(ctx context.Context, provider Provider, apiKey string, opts Options) (Backend, error) {
	switch provider {
	case ProviderOpenAI:
		return newOpenAIBackend(apiKey, opts)
	case ProviderAnthropic:
		return newAnthropicBackend(apiKey, opts)
	case ProviderGemini:
		return newGeminiBackend(ctx, apiKey, opts)
	case ProviderCompat:
		return newCompatBackend(ctx, apiKey, opts)
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"unsupported translation provider", string(provider), nil)
	}
}
