package phrasematch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindset-labs/phrasematch/types"
)

// MatchMethod names the index that produced a SearchResult.
type MatchMethod string

const (
	// MatchSemantic means the embedding index resolved the query.
	MatchSemantic MatchMethod = "semantic"
	// MatchLexical means the full-text index resolved the query after
	// embedding similarity fell short of the threshold.
	MatchLexical MatchMethod = "lexical"
)

// SearchResult is the outcome of a combined semantic and full-text
// lookup. Score is a cosine similarity for semantic results and
// Bleve's relevance rank for lexical ones; compare scores only within
// the same method.
type SearchResult struct {
	Key         string      `json:"key,omitempty"`
	VariationID string      `json:"variation_id,omitempty"`
	Text        string      `json:"text,omitempty"`
	Score       float32     `json:"score"`
	Matched     bool        `json:"matched"`
	Method      MatchMethod `json:"method,omitempty"`
}

// SearchPhrase resolves text semantically first and falls back to
// full-text search when no stored phrase clears threshold. An
// unmatched result carries the semantic near-miss score so callers can
// log how close the query came.
func (e *Engine) SearchPhrase(ctx context.Context, text string, threshold float32) (SearchResult, error) {
	return e.searchPhrase(ctx, text, "", threshold)
}

// SearchPhraseKey is SearchPhrase restricted to the variations of a
// single intent key.
func (e *Engine) SearchPhraseKey(ctx context.Context, text, key string, threshold float32) (SearchResult, error) {
	if strings.TrimSpace(key) == "" {
		return SearchResult{}, fmt.Errorf("intent key is empty: %w", types.ErrValidation)
	}
	return e.searchPhrase(ctx, text, key, threshold)
}

func (e *Engine) searchPhrase(ctx context.Context, text, key string, threshold float32) (SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return SearchResult{}, fmt.Errorf("query text is empty: %w", types.ErrValidation)
	}

	vec, err := e.provider.EmbedText(ctx, text)
	if err != nil {
		return SearchResult{}, fmt.Errorf("embedding query text: %w: %w", types.ErrMatchUnavailable, err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var semantic types.MatchResult
	if key == "" {
		semantic = toMatchResult(e.index.Nearest(vec, 1), threshold)
	} else {
		semantic = toMatchResult(e.index.NearestKey(vec, key, 1), threshold)
	}
	if semantic.Matched {
		return SearchResult{
			Key:         semantic.Key,
			VariationID: semantic.VariationID,
			Text:        semantic.Text,
			Score:       semantic.Score,
			Matched:     true,
			Method:      MatchSemantic,
		}, nil
	}

	hits, err := e.lexical.Search(text, key, 1)
	if err != nil {
		return SearchResult{}, fmt.Errorf("full-text search: %w: %w", types.ErrMatchUnavailable, err)
	}
	if len(hits) > 0 {
		best := hits[0]
		return SearchResult{
			Key:         best.Key,
			VariationID: best.VariationID,
			Text:        best.Text,
			Score:       float32(best.Score),
			Matched:     true,
			Method:      MatchLexical,
		}, nil
	}

	// Neither index matched; report the semantic near-miss.
	return SearchResult{Score: semantic.Score, Method: MatchSemantic}, nil
}
