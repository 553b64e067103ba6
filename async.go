package phrasematch

import (
	"context"

	"github.com/mindset-labs/phrasematch/types"
)

// MatchOutcome holds the result of an async Match operation.
type MatchOutcome struct {
	Result types.MatchResult
	Error  error
}

// MatchAsync performs Match on a goroutine and delivers the outcome on
// the returned channel. The channel receives exactly one value.
func (e *Engine) MatchAsync(ctx context.Context, text string, threshold float32) <-chan MatchOutcome {
	resultCh := make(chan MatchOutcome, 1)
	go func() {
		defer close(resultCh)
		result, err := e.Match(ctx, text, threshold)
		resultCh <- MatchOutcome{Result: result, Error: err}
	}()
	return resultCh
}

// AddPhraseOutcome holds the result of an async AddPhrase operation.
type AddPhraseOutcome struct {
	Report *Report
	Error  error
}

// AddPhraseAsync performs AddPhrase on a goroutine and delivers the
// outcome on the returned channel. The channel receives exactly one
// value.
func (e *Engine) AddPhraseAsync(ctx context.Context, key string, variations []string) <-chan AddPhraseOutcome {
	resultCh := make(chan AddPhraseOutcome, 1)
	go func() {
		defer close(resultCh)
		report, err := e.AddPhrase(ctx, key, variations)
		resultCh <- AddPhraseOutcome{Report: report, Error: err}
	}()
	return resultCh
}
