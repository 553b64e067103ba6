// Package tokenizer counts embedding-input tokens so providers can
// reject over-long text before spending an API call on it.
package tokenizer

import "context"

// Counter reports how many tokens a piece of text costs for one
// provider's embedding models.
type Counter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
