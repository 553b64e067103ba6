package phrasematch

import (
	"context"
	"errors"
	"testing"

	"github.com/mindset-labs/phrasematch/types"
)

func TestAddPhraseAsync(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())

	outcome := <-engine.AddPhraseAsync(ctx, "greeting", []string{"Hello", "Hi there"})
	if outcome.Error != nil {
		t.Fatalf("AddPhraseAsync failed: %v", outcome.Error)
	}
	if len(outcome.Report.Added) != 2 {
		t.Errorf("Expected 2 added, got %+v", outcome.Report)
	}
}

func TestMatchAsync(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())
	seedGreetingFarewell(t, engine)

	outcome := <-engine.MatchAsync(ctx, "hiya", 0.5)
	if outcome.Error != nil {
		t.Fatalf("MatchAsync failed: %v", outcome.Error)
	}
	if !outcome.Result.Matched || outcome.Result.Key != "greeting" {
		t.Errorf("Expected greeting match, got %+v", outcome.Result)
	}
}

func TestMatchAsyncError(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())

	outcome := <-engine.MatchAsync(ctx, "", 0.5)
	if !errors.Is(outcome.Error, types.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", outcome.Error)
	}
}

func TestAsyncChannelCloses(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMockProvider())
	seedGreetingFarewell(t, engine)

	ch := engine.MatchAsync(ctx, "Hello", 0.5)
	<-ch
	if _, open := <-ch; open {
		t.Error("Expected channel closed after delivering one outcome")
	}
}
