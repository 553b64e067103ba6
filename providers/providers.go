// Package providers exposes constructors for the built-in embedding
// providers behind the types.EmbeddingProvider interface.
package providers

import (
	"context"

	"github.com/mindset-labs/phrasematch/providers/cached"
	"github.com/mindset-labs/phrasematch/providers/gemini"
	"github.com/mindset-labs/phrasematch/providers/ollama"
	"github.com/mindset-labs/phrasematch/providers/openai"
	"github.com/mindset-labs/phrasematch/types"
)

// NewOpenAI creates an OpenAI embedding provider.
func NewOpenAI(config openai.Config) (types.EmbeddingProvider, error) {
	return openai.New(config)
}

// NewGemini creates a Gemini embedding provider.
func NewGemini(ctx context.Context, config gemini.Config) (types.EmbeddingProvider, error) {
	return gemini.New(ctx, config)
}

// NewOllama creates an Ollama embedding provider.
func NewOllama(config ollama.Config) types.EmbeddingProvider {
	return ollama.New(config)
}

// NewCached wraps a provider with an LRU embedding memo.
func NewCached(inner types.EmbeddingProvider, capacity int) (types.EmbeddingProvider, error) {
	return cached.New(inner, capacity)
}
