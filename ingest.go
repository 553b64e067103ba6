package phrasematch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindset-labs/phrasematch/index"
	"github.com/mindset-labs/phrasematch/types"
)

// Report describes the outcome of one AddPhrase call, variation by
// variation, so callers can retry exactly what failed.
type Report struct {
	Key string `json:"key"`

	// Added holds variations embedded and stored by this call.
	Added []string `json:"added,omitempty"`

	// Skipped holds variations already stored under Key; ingestion is
	// idempotent per (key, text).
	Skipped []string `json:"skipped,omitempty"`

	// Failed holds variations whose embedding failed. They are neither
	// stored nor indexed.
	Failed []types.VariationFailure `json:"failed,omitempty"`

	// Warnings reports wordings already registered under other keys
	// (PotentialAmbiguity). Non-fatal.
	Warnings []types.AmbiguityWarning `json:"warnings,omitempty"`
}

// AllStored reports whether every requested variation ended up in the
// store, counting idempotent duplicates as stored.
func (r *Report) AllStored() bool {
	return len(r.Failed) == 0
}

// AddPhrase validates, embeds, and stores new phrase variations under
// key, then updates the index, in that order. Embedding happens before
// the write lock is taken; the store append and index upsert happen
// under it, so concurrent readers never observe an index entry without
// its backing store record or vice versa.
//
// Validation failures (empty key, any empty variation) reject the
// whole call with ErrValidation and leave the store untouched.
// Per-variation embedding failures do not: successful variations are
// stored, failed ones are listed in the Report with their cause.
func (e *Engine) AddPhrase(ctx context.Context, key string, variations []string) (*Report, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("intent key is empty: %w", types.ErrValidation)
	}
	if len(variations) == 0 {
		return nil, fmt.Errorf("no variations given for key %q: %w", key, types.ErrValidation)
	}
	for i, text := range variations {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("variation %d under key %q is empty: %w", i, key, types.ErrValidation)
		}
	}

	report := &Report{Key: key}

	// Dedupe against the store and within the input itself.
	seen := make(map[string]struct{}, len(variations))
	type candidate struct {
		inputIndex int
		text       string
	}
	var candidates []candidate
	for i, text := range variations {
		if _, dup := seen[text]; dup {
			report.Skipped = append(report.Skipped, text)
			continue
		}
		seen[text] = struct{}{}

		existing, err := e.store.KeysForText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("checking existing phrases for key %q: %w", key, err)
		}

		known := false
		var others []string
		for _, k := range existing {
			if k == key {
				known = true
			} else {
				others = append(others, k)
			}
		}
		if known {
			report.Skipped = append(report.Skipped, text)
			continue
		}
		if len(others) > 0 {
			report.Warnings = append(report.Warnings, types.AmbiguityWarning{
				Text:      text,
				Key:       key,
				OtherKeys: others,
			})
		}
		candidates = append(candidates, candidate{inputIndex: i, text: text})
	}

	// Embed outside the write lock; only variations that embedded
	// successfully move on to the store.
	var vars []types.Variation
	for _, c := range candidates {
		vec, err := e.provider.EmbedText(ctx, c.text)
		if err != nil {
			report.Failed = append(report.Failed, types.VariationFailure{
				Index: c.inputIndex,
				Text:  c.text,
				Err:   fmt.Errorf("%w: %w", types.ErrEmbeddingUnavailable, err),
			})
			continue
		}
		vars = append(vars, types.Variation{
			ID:     types.VariationID(c.text),
			Text:   c.text,
			Vector: vec,
		})
	}

	if len(vars) == 0 {
		return report, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	added, err := e.store.Append(ctx, key, vars)
	if err != nil {
		return report, fmt.Errorf("storing phrases for key %q: %w", key, err)
	}
	for _, v := range added {
		e.index.Upsert(index.Entry{
			Key:         key,
			VariationID: v.ID,
			Text:        v.Text,
			Vector:      v.Vector,
		})
		if err := e.lexical.Upsert(key, v.ID, v.Text); err != nil {
			return report, fmt.Errorf("indexing phrase text for key %q: %w", key, err)
		}
		report.Added = append(report.Added, v.Text)
	}

	return report, nil
}
