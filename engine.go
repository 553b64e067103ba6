// Package phrasematch resolves free-form user text to canonical
// intent keys by embedding similarity. A phrase store maps each intent
// key to its natural-language variations; queries embed the user text
// and look up the nearest stored variation.
package phrasematch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mindset-labs/phrasematch/index"
	"github.com/mindset-labs/phrasematch/lexical"
	"github.com/mindset-labs/phrasematch/options"
	"github.com/mindset-labs/phrasematch/types"
)

// DefaultThreshold is the recommended minimum cosine similarity for
// accepting a match. Deployments tune this per corpus; the engine
// never applies it implicitly.
const DefaultThreshold = 0.75

// Engine is the public query and ingestion surface. It owns a phrase
// store and its derived embedding index and keeps the two consistent
// under concurrent use: ingestions take the write lock for the
// store+index update, queries take the read lock, so a reader sees
// either the pre- or post-ingestion state, never a half-applied one.
type Engine struct {
	mu       sync.RWMutex
	store    types.StoreBackend
	index    index.Index
	lexical  *lexical.Index
	provider types.EmbeddingProvider
	newIndex func() index.Index
}

// New creates an Engine with functional options. An embedding provider
// is required; the store defaults to in-memory and the index to an
// exact cosine scan. If the store already holds phrases (a durable
// backend reopened across restarts), the index is rebuilt from it.
func New(ctx context.Context, opts ...options.Option) (*Engine, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lex, err := lexical.New()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    cfg.Store,
		provider: cfg.Provider,
		newIndex: cfg.NewIndex,
		index:    cfg.NewIndex(),
		lexical:  lex,
	}

	n, err := e.store.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store size: %w", err)
	}
	if n > 0 {
		if err := e.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Match embeds text and returns the best-matching canonical key if its
// similarity clears threshold. Below threshold, the result carries
// Matched=false and the best score found so callers can log
// near-misses. Empty query text fails with ErrValidation before any
// embedding call; an embedding failure surfaces as ErrMatchUnavailable.
func (e *Engine) Match(ctx context.Context, text string, threshold float32) (types.MatchResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.MatchResult{}, fmt.Errorf("query text is empty: %w", types.ErrValidation)
	}

	vec, err := e.provider.EmbedText(ctx, text)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("embedding query text: %w: %w", types.ErrMatchUnavailable, err)
	}

	e.mu.RLock()
	results := e.index.Nearest(vec, 1)
	e.mu.RUnlock()

	return toMatchResult(results, threshold), nil
}

// MatchKey is Match restricted to the variations of a single intent
// key, for callers that only need to confirm or reject one intent.
func (e *Engine) MatchKey(ctx context.Context, text, key string, threshold float32) (types.MatchResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.MatchResult{}, fmt.Errorf("query text is empty: %w", types.ErrValidation)
	}
	if strings.TrimSpace(key) == "" {
		return types.MatchResult{}, fmt.Errorf("intent key is empty: %w", types.ErrValidation)
	}

	vec, err := e.provider.EmbedText(ctx, text)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("embedding query text: %w: %w", types.ErrMatchUnavailable, err)
	}

	e.mu.RLock()
	results := e.index.NearestKey(vec, key, 1)
	e.mu.RUnlock()

	return toMatchResult(results, threshold), nil
}

// TopMatches returns up to n stored variations ranked by similarity to
// text, best first, without applying any threshold.
func (e *Engine) TopMatches(ctx context.Context, text string, n int) ([]types.MatchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty: %w", types.ErrValidation)
	}
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive: %w", types.ErrValidation)
	}

	vec, err := e.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query text: %w: %w", types.ErrMatchUnavailable, err)
	}

	e.mu.RLock()
	results := e.index.Nearest(vec, n)
	e.mu.RUnlock()

	matches := make([]types.MatchResult, len(results))
	for i, r := range results {
		matches[i] = types.MatchResult{
			Key:         r.Key,
			VariationID: r.VariationID,
			Text:        r.Text,
			Score:       r.Score,
			Matched:     true,
		}
	}
	return matches, nil
}

func toMatchResult(results []index.Result, threshold float32) types.MatchResult {
	if len(results) == 0 {
		return types.MatchResult{}
	}

	best := results[0]
	if best.Score < threshold {
		return types.MatchResult{Score: best.Score}
	}
	return types.MatchResult{
		Key:         best.Key,
		VariationID: best.VariationID,
		Text:        best.Text,
		Score:       best.Score,
		Matched:     true,
	}
}

// Variations returns the stored phrase texts for key in insertion
// order, empty if the key is unknown.
func (e *Engine) Variations(ctx context.Context, key string) ([]string, error) {
	vars, err := e.store.Variations(ctx, key)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(vars))
	for i, v := range vars {
		texts[i] = v.Text
	}
	return texts, nil
}

// Keys returns all canonical intent keys in the store.
func (e *Engine) Keys(ctx context.Context) ([]string, error) {
	return e.store.Keys(ctx)
}

// Len returns the total number of stored phrase variations.
func (e *Engine) Len(ctx context.Context) (int, error) {
	return e.store.Len(ctx)
}

// Rebuild reconstructs the embedding and lexical indexes from the
// store. Both are derived data; rebuilding is idempotent. The write
// lock is held across enumeration and swap so an ingestion cannot
// commit to the store between the two and be left out of the new
// indexes.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh := e.newIndex()
	freshLex, err := lexical.New()
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	err = e.store.ForEach(ctx, func(key string, v types.Variation) error {
		fresh.Upsert(index.Entry{
			Key:         key,
			VariationID: v.ID,
			Text:        v.Text,
			Vector:      v.Vector,
		})
		return freshLex.Upsert(key, v.ID, v.Text)
	})
	if err != nil {
		freshLex.Close()
		return fmt.Errorf("rebuilding index: %w", err)
	}

	old := e.lexical
	e.index = fresh
	e.lexical = freshLex
	old.Close()
	return nil
}

// Close closes the store, the lexical index, and the provider.
func (e *Engine) Close() error {
	e.provider.Close()
	e.lexical.Close()
	return e.store.Close()
}
