package index

import (
	"sync"

	"github.com/mindset-labs/phrasematch/similarity"
)

// Linear is an exact, in-memory index that scans every entry per
// query. Phrase stores are small (tens of variations per intent), so
// the scan is cheap and the results are exact and fully deterministic.
type Linear struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry // key -> variationID -> entry
	compare similarity.Func
}

// NewLinear creates an exact index using the given similarity
// function. A nil compare defaults to cosine similarity.
func NewLinear(compare similarity.Func) *Linear {
	if compare == nil {
		compare = similarity.Cosine
	}
	return &Linear{
		entries: make(map[string]map[string]Entry),
		compare: compare,
	}
}

// Upsert adds or replaces the entry for (Key, VariationID).
func (l *Linear) Upsert(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byID, ok := l.entries[e.Key]
	if !ok {
		byID = make(map[string]Entry)
		l.entries[e.Key] = byID
	}
	byID[e.VariationID] = e
}

// Remove deletes the entry for (key, variationID) if present.
func (l *Linear) Remove(key, variationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if byID, ok := l.entries[key]; ok {
		delete(byID, variationID)
		if len(byID) == 0 {
			delete(l.entries, key)
		}
	}
}

// Nearest returns up to k entries most similar to query, best first.
func (l *Linear) Nearest(query []float32, k int) []Result {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []Result
	for _, byID := range l.entries {
		for _, e := range byID {
			results = append(results, Result{
				Key:         e.Key,
				VariationID: e.VariationID,
				Text:        e.Text,
				Score:       l.compare(query, e.Vector),
			})
		}
	}

	sortResults(results)
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// NearestKey is Nearest restricted to entries owned by key.
func (l *Linear) NearestKey(query []float32, key string, k int) []Result {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []Result
	for _, e := range l.entries[key] {
		results = append(results, Result{
			Key:         e.Key,
			VariationID: e.VariationID,
			Text:        e.Text,
			Score:       l.compare(query, e.Vector),
		})
	}

	sortResults(results)
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// Len returns the number of indexed entries.
func (l *Linear) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, byID := range l.entries {
		n += len(byID)
	}
	return n
}
