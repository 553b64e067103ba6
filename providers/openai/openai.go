// Package openai provides an OpenAI-backed embedding provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/mindset-labs/phrasematch/tokenizer"
)

const (
	DefaultModel = openai.EmbeddingModelTextEmbedding3Small

	// maxInputTokens is the input limit of the text-embedding-3 models.
	maxInputTokens = 8191
)

// Provider uses OpenAI's API to embed text.
type Provider struct {
	client  *openai.Client
	model   string
	counter tokenizer.Counter
}

// Config provides configuration options for the OpenAI provider.
type Config struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
}

// New creates an embedding provider for OpenAI. If Config.APIKey is
// empty, OPENAI_API_KEY is used.
func New(config Config) (*Provider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	// Counting locally lets over-long input fail before an API call
	// is spent on it.
	counter, err := tokenizer.NewOpenAICounter()
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	client := openai.NewClient(opts...)
	return &Provider{client: &client, model: model, counter: counter}, nil
}

// EmbedText sends the embedding request to OpenAI.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if n, err := p.counter.CountTokens(ctx, text); err == nil && n > maxInputTokens {
		return nil, fmt.Errorf("input is %d tokens, model limit is %d", n, maxInputTokens)
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned by OpenAI")
	}

	// OpenAI returns []float64; convert to []float32.
	embeddingF64 := resp.Data[0].Embedding
	embeddingF32 := make([]float32, len(embeddingF64))
	for i, v := range embeddingF64 {
		embeddingF32[i] = float32(v)
	}
	return embeddingF32, nil
}

// Close frees resources held by the provider.
func (p *Provider) Close() {}
