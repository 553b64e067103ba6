package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for the matching core. All failures wrap one of these
// sentinels so callers can branch with errors.Is.
var (
	// ErrValidation marks malformed input rejected before any external
	// call: empty keys, empty or whitespace-only phrase text, empty
	// query text.
	ErrValidation = errors.New("invalid input")

	// ErrEmbeddingUnavailable marks an embedding model or service
	// failure, including timeouts. The core never retries internally;
	// retry policy belongs to the caller.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrMatchUnavailable marks a query that could not be evaluated at
	// all because embedding the query text failed. Distinct from a
	// clean below-threshold "no match" result.
	ErrMatchUnavailable = errors.New("match unavailable")
)

// AmbiguityWarning reports that identical phrase text is registered
// under more than one canonical key. Ingestion still succeeds; the
// duplicate wording degrades match quality but is not fatal.
type AmbiguityWarning struct {
	Text      string   `json:"text"`
	Key       string   `json:"key"`
	OtherKeys []string `json:"other_keys"`
}

func (w AmbiguityWarning) String() string {
	return fmt.Sprintf("phrase %q under key %q already registered under %v", w.Text, w.Key, w.OtherKeys)
}

// VariationFailure records one variation that could not be ingested,
// with its position in the caller's input so the caller can retry just
// the failed entries.
type VariationFailure struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Err   error  `json:"-"`
}

func (f VariationFailure) Error() string {
	return fmt.Sprintf("variation %d (%q): %v", f.Index, f.Text, f.Err)
}

func (f VariationFailure) Unwrap() error { return f.Err }
