// Package cached wraps an embedding provider with an in-memory LRU
// memo. Ingestion re-embeds duplicate wordings and queries often
// repeat verbatim; caching keyed by text content skips those calls.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mindset-labs/phrasematch/types"
)

// Provider memoizes another provider's embeddings in an LRU cache.
type Provider struct {
	inner types.EmbeddingProvider
	cache *lru.Cache[string, []float32]
}

// New wraps inner with an LRU memo of the given capacity.
func New(inner types.EmbeddingProvider, capacity int) (*Provider, error) {
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &Provider{inner: inner, cache: cache}, nil
}

func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16])
}

// EmbedText returns the cached vector for text, or embeds and caches.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)
	if vec, ok := p.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := p.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, vec)
	return vec, nil
}

// Close closes the wrapped provider.
func (p *Provider) Close() {
	p.inner.Close()
}
