package tokenizer

import (
	"context"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAICounter counts tokens for OpenAI embedding input using tiktoken
type OpenAICounter struct {
	enc tokenizer.Codec
}

// NewOpenAICounter creates a counter for the cl100k_base encoding used
// by the text-embedding-3 model family.
func NewOpenAICounter() (*OpenAICounter, error) {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &OpenAICounter{enc: enc}, nil
}

// CountTokens counts tokens in text using tiktoken
// This is a local, fast operation that doesn't require an API call
func (c *OpenAICounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := c.enc.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
