package index

import (
	"strings"
	"sync"

	"github.com/coder/hnsw"
)

// HNSW is an approximate index backed by a hierarchical navigable
// small world graph. Useful once a deployment accumulates enough
// variations that linear scans start to show up in query latency;
// results are approximate and always scored with cosine similarity.
type HNSW struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	entries map[string]Entry // composite key -> entry

	// dead counts Delete calls against the graph. Deleted nodes can
	// remain reachable to Search, so queries over-fetch by this much
	// and filter hits through entries.
	dead int
}

// NewHNSW creates an approximate cosine-distance index.
func NewHNSW() *HNSW {
	g := hnsw.NewGraph[string]()
	g.Distance = hnsw.CosineDistance
	return &HNSW{
		graph:   g,
		entries: make(map[string]Entry),
	}
}

// compositeKey joins intent key and variation ID into one graph key.
// Intent keys never contain NUL, variation IDs are hex.
func compositeKey(key, variationID string) string {
	return key + "\x00" + variationID
}

// Upsert adds or replaces the entry for (Key, VariationID).
func (h *HNSW) Upsert(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ck := compositeKey(e.Key, e.VariationID)
	if _, exists := h.entries[ck]; exists {
		h.graph.Delete(ck)
		h.dead++
	}
	h.graph.Add(hnsw.MakeNode(ck, e.Vector))
	h.entries[ck] = e
}

// Remove deletes the entry for (key, variationID) if present.
func (h *HNSW) Remove(key, variationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ck := compositeKey(key, variationID)
	if _, exists := h.entries[ck]; !exists {
		return
	}
	h.graph.Delete(ck)
	h.dead++
	delete(h.entries, ck)
}

// Nearest returns up to k entries most similar to query, best first.
// Hits are resolved against the live entry map, so removed or replaced
// nodes lingering in the graph never reach the caller; scores always
// come from the entry's current vector.
func (h *HNSW) Nearest(query []float32, k int) []Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 || k <= 0 {
		return nil
	}

	neighbors := h.graph.Search(query, k+h.dead)
	seen := make(map[string]struct{}, len(neighbors))
	results := make([]Result, 0, k)
	for _, n := range neighbors {
		e, live := h.entries[n.Key]
		if !live {
			continue
		}
		if _, dup := seen[n.Key]; dup {
			continue
		}
		seen[n.Key] = struct{}{}
		results = append(results, Result{
			Key:         e.Key,
			VariationID: e.VariationID,
			Text:        e.Text,
			Score:       1 - h.graph.Distance(query, e.Vector),
		})
	}
	sortResults(results)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// NearestKey scans exactly over the entries owned by key. Per-intent
// variation sets are small, so an exact scan beats filtering the
// approximate graph output.
func (h *HNSW) NearestKey(query []float32, key string, k int) []Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var results []Result
	prefix := key + "\x00"
	for ck, e := range h.entries {
		if !strings.HasPrefix(ck, prefix) {
			continue
		}
		results = append(results, Result{
			Key:         e.Key,
			VariationID: e.VariationID,
			Text:        e.Text,
			Score:       1 - h.graph.Distance(query, e.Vector),
		})
	}

	sortResults(results)
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// Len returns the number of indexed entries.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
