package phrasematch

import (
	"context"
	"errors"
	"testing"

	"github.com/mindset-labs/phrasematch/types"
)

func TestSearchPhrase(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())
	seedGreetingFarewell(t, engine)

	t.Run("SemanticFirst", func(t *testing.T) {
		result, err := engine.SearchPhrase(ctx, "hiya", 0.5)
		if err != nil {
			t.Fatalf("SearchPhrase failed: %v", err)
		}
		if !result.Matched || result.Key != "greeting" {
			t.Fatalf("Expected greeting match, got %+v", result)
		}
		if result.Method != MatchSemantic {
			t.Errorf("Expected semantic method, got %s", result.Method)
		}
	})

	t.Run("LexicalFallback", func(t *testing.T) {
		// "Hello everyone" embeds far from every stored vector, so the
		// semantic pass misses at 0.9 and the shared token carries it.
		result, err := engine.SearchPhrase(ctx, "Hello everyone", 0.9)
		if err != nil {
			t.Fatalf("SearchPhrase failed: %v", err)
		}
		if !result.Matched {
			t.Fatalf("Expected full-text fallback match, got %+v", result)
		}
		if result.Method != MatchLexical {
			t.Errorf("Expected lexical method, got %s", result.Method)
		}
		if result.Key != "greeting" || result.Text != "Hello" {
			t.Errorf("Expected greeting/Hello, got %+v", result)
		}
		if result.Score <= 0 {
			t.Errorf("Expected positive relevance, got %f", result.Score)
		}
	})

	t.Run("NeitherMatches", func(t *testing.T) {
		result, err := engine.SearchPhrase(ctx, "zzz qqq", 0.9)
		if err != nil {
			t.Fatalf("SearchPhrase failed: %v", err)
		}
		if result.Matched {
			t.Fatalf("Expected no match, got %+v", result)
		}
		// The near-miss score comes from the semantic pass.
		if result.Method != MatchSemantic || result.Score <= 0 {
			t.Errorf("Expected semantic near-miss score, got %+v", result)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := engine.SearchPhrase(ctx, "  ", 0.5); !errors.Is(err, types.ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})
}

func TestSearchPhraseKey(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())
	seedGreetingFarewell(t, engine)

	t.Run("RestrictedLexicalHit", func(t *testing.T) {
		result, err := engine.SearchPhraseKey(ctx, "Hello everyone", "greeting", 0.9)
		if err != nil {
			t.Fatalf("SearchPhraseKey failed: %v", err)
		}
		if !result.Matched || result.Method != MatchLexical || result.Key != "greeting" {
			t.Errorf("Expected lexical greeting match, got %+v", result)
		}
	})

	t.Run("RestrictedMiss", func(t *testing.T) {
		result, err := engine.SearchPhraseKey(ctx, "Hello everyone", "farewell", 0.9)
		if err != nil {
			t.Fatalf("SearchPhraseKey failed: %v", err)
		}
		if result.Matched {
			t.Errorf("Expected no farewell match, got %+v", result)
		}
	})

	t.Run("EmptyKey", func(t *testing.T) {
		if _, err := engine.SearchPhraseKey(ctx, "hiya", "", 0.5); !errors.Is(err, types.ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})
}

func TestSearchPhraseUnavailable(t *testing.T) {
	ctx := context.Background()
	provider := newMockProvider()
	engine := newTestEngine(t, provider)
	seedGreetingFarewell(t, engine)

	provider.shouldErr = true
	if _, err := engine.SearchPhrase(ctx, "hiya", 0.5); !errors.Is(err, types.ErrMatchUnavailable) {
		t.Errorf("Expected ErrMatchUnavailable, got %v", err)
	}
}

func TestSearchPhraseSurvivesRebuild(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())
	seedGreetingFarewell(t, engine)

	if err := engine.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	result, err := engine.SearchPhrase(ctx, "Hello everyone", 0.9)
	if err != nil {
		t.Fatalf("SearchPhrase failed: %v", err)
	}
	if !result.Matched || result.Method != MatchLexical || result.Key != "greeting" {
		t.Errorf("Expected lexical match after rebuild, got %+v", result)
	}
}
