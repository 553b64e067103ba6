// Package index provides nearest-neighbor retrieval over the phrase
// store's embedding vectors. The index is derived data: it is always
// reconstructible from the store, and the engine keeps the two in
// lockstep during ingestion.
package index

import "sort"

// Entry is one indexed vector with its owning canonical key and
// variation identity. Text is carried for deterministic tie-breaking
// on result ordering.
type Entry struct {
	Key         string
	VariationID string
	Text        string
	Vector      []float32
}

// Result is one nearest-neighbor hit, best first.
type Result struct {
	Key         string
	VariationID string
	Text        string
	Score       float32
}

// Index is a collection of (vector, key, variation) entries supporting
// nearest-neighbor queries. Implementations are safe for concurrent
// use; Nearest on an empty index returns nil, never an error.
type Index interface {
	// Upsert adds or replaces the entry for (Key, VariationID).
	Upsert(e Entry)

	// Remove deletes the entry for (key, variationID) if present.
	Remove(key, variationID string)

	// Nearest returns up to k entries most similar to query, best
	// first, with deterministic ordering under score ties.
	Nearest(query []float32, k int) []Result

	// NearestKey is Nearest restricted to entries owned by key.
	NearestKey(query []float32, key string, k int) []Result

	// Len returns the number of indexed entries.
	Len() int
}

// sortResults orders hits by descending score, breaking ties by
// shorter variation text, then lexicographic key, then variation ID.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Text) != len(b.Text) {
			return len(a.Text) < len(b.Text)
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.VariationID < b.VariationID
	})
}
