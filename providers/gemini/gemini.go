// Package gemini provides a Gemini-backed embedding provider using the
// native Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/mindset-labs/phrasematch/tokenizer"
)

const DefaultModel = "gemini-embedding-001"

// Provider uses the Gemini API to embed text.
type Provider struct {
	client         *genai.Client
	model          string
	counter        tokenizer.Counter
	maxInputTokens int
}

// Config provides configuration options for the Gemini provider.
type Config struct {
	APIKey string
	Model  string

	// MaxInputTokens, when positive, rejects input longer than this
	// many tokens before embedding. Counting costs an extra API call
	// per text, so it is off by default.
	MaxInputTokens int
}

// New creates an embedding provider for Gemini. If Config.APIKey is
// empty, GEMINI_API_KEY is used.
func New(ctx context.Context, config Config) (*Provider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("Gemini API key is required")
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:         client,
		model:          model,
		counter:        tokenizer.NewGeminiCounter(client, model),
		maxInputTokens: config.MaxInputTokens,
	}, nil
}

// EmbedText sends the embedding request to Gemini.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if p.maxInputTokens > 0 {
		n, err := p.counter.CountTokens(ctx, text)
		if err != nil {
			return nil, err
		}
		if n > p.maxInputTokens {
			return nil, fmt.Errorf("input is %d tokens, configured limit is %d", n, p.maxInputTokens)
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding returned by Gemini")
	}

	return resp.Embeddings[0].Values, nil
}

// Close frees resources held by the provider.
func (p *Provider) Close() {}
