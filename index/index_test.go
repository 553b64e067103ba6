package index

import (
	"fmt"
	"sync"
	"testing"
)

func entry(key, id, text string, vec []float32) Entry {
	return Entry{Key: key, VariationID: id, Text: text, Vector: vec}
}

func TestLinearNearest(t *testing.T) {
	idx := NewLinear(nil)
	idx.Upsert(entry("greeting", "aa", "Hello", []float32{1, 0, 0}))
	idx.Upsert(entry("greeting", "ab", "Hi there", []float32{0.9, 0.1, 0}))
	idx.Upsert(entry("farewell", "ba", "Goodbye", []float32{0, 1, 0}))

	t.Run("OrdersByScore", func(t *testing.T) {
		results := idx.Nearest([]float32{1, 0, 0}, 3)
		if len(results) != 3 {
			t.Fatalf("Expected 3 results, got %d", len(results))
		}
		if results[0].Key != "greeting" || results[0].VariationID != "aa" {
			t.Errorf("Expected greeting/aa first, got %s/%s", results[0].Key, results[0].VariationID)
		}
		if results[2].Key != "farewell" {
			t.Errorf("Expected farewell last, got %s", results[2].Key)
		}
	})

	t.Run("RespectsK", func(t *testing.T) {
		results := idx.Nearest([]float32{1, 0, 0}, 1)
		if len(results) != 1 {
			t.Errorf("Expected 1 result, got %d", len(results))
		}
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		empty := NewLinear(nil)
		if results := empty.Nearest([]float32{1, 0, 0}, 5); len(results) != 0 {
			t.Errorf("Expected empty result from empty index, got %d", len(results))
		}
	})

	t.Run("NearestKey", func(t *testing.T) {
		results := idx.NearestKey([]float32{1, 0, 0}, "farewell", 5)
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
		if results[0].Key != "farewell" {
			t.Errorf("Expected farewell, got %s", results[0].Key)
		}
	})
}

func TestLinearTieBreak(t *testing.T) {
	idx := NewLinear(nil)
	// Identical vectors force identical scores; ordering must fall
	// back to text length, then key, then ID.
	idx.Upsert(entry("zeta", "aa", "Hey", []float32{1, 0}))
	idx.Upsert(entry("alpha", "ab", "Hello there", []float32{1, 0}))
	idx.Upsert(entry("beta", "ac", "Yo!", []float32{1, 0}))

	results := idx.Nearest([]float32{1, 0}, 3)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	// "Hey" and "Yo!" share length 3: key order puts beta before zeta.
	if results[0].Key != "beta" {
		t.Errorf("Expected beta first, got %s", results[0].Key)
	}
	if results[1].Key != "zeta" {
		t.Errorf("Expected zeta second, got %s", results[1].Key)
	}
	if results[2].Key != "alpha" {
		t.Errorf("Expected alpha (longer text) last, got %s", results[2].Key)
	}
}

func TestLinearDeterminism(t *testing.T) {
	idx := NewLinear(nil)
	for i := 0; i < 20; i++ {
		idx.Upsert(entry("k", fmt.Sprintf("%02d", i), fmt.Sprintf("phrase %d", i), []float32{float32(i) / 20, 1, 0}))
	}

	first := idx.Nearest([]float32{0.5, 1, 0}, 20)
	for run := 0; run < 5; run++ {
		again := idx.Nearest([]float32{0.5, 1, 0}, 20)
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("Run %d: result %d differs: %+v vs %+v", run, i, first[i], again[i])
			}
		}
	}
}

func TestLinearUpsertRemove(t *testing.T) {
	idx := NewLinear(nil)
	idx.Upsert(entry("k", "aa", "one", []float32{1, 0}))
	idx.Upsert(entry("k", "aa", "one", []float32{0, 1})) // replace

	if idx.Len() != 1 {
		t.Fatalf("Expected 1 entry after upsert of same ID, got %d", idx.Len())
	}

	results := idx.Nearest([]float32{0, 1}, 1)
	if results[0].Score < 0.99 {
		t.Errorf("Expected replaced vector to score ~1, got %f", results[0].Score)
	}

	idx.Remove("k", "aa")
	if idx.Len() != 0 {
		t.Errorf("Expected empty index after remove, got %d", idx.Len())
	}
	idx.Remove("k", "aa") // no-op
}

func TestLinearConcurrentAccess(t *testing.T) {
	idx := NewLinear(nil)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			idx.Upsert(entry("k", fmt.Sprintf("%02d", i), "text", []float32{float32(i), 1}))
		}(i)
		go func() {
			defer wg.Done()
			idx.Nearest([]float32{1, 1}, 5)
		}()
	}
	wg.Wait()

	if idx.Len() != 10 {
		t.Errorf("Expected 10 entries, got %d", idx.Len())
	}
}

func TestHNSWIndex(t *testing.T) {
	idx := NewHNSW()
	idx.Upsert(entry("greeting", "aa", "Hello", []float32{1, 0, 0}))
	idx.Upsert(entry("greeting", "ab", "Hi there", []float32{0.9, 0.1, 0}))
	idx.Upsert(entry("farewell", "ba", "Goodbye", []float32{0, 1, 0}))

	t.Run("Nearest", func(t *testing.T) {
		results := idx.Nearest([]float32{1, 0, 0}, 1)
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
		if results[0].Key != "greeting" || results[0].VariationID != "aa" {
			t.Errorf("Expected greeting/aa, got %s/%s", results[0].Key, results[0].VariationID)
		}
		if results[0].Score < 0.99 {
			t.Errorf("Expected score ~1 for identical vector, got %f", results[0].Score)
		}
	})

	t.Run("NearestKey", func(t *testing.T) {
		results := idx.NearestKey([]float32{1, 0, 0}, "farewell", 5)
		if len(results) != 1 || results[0].Key != "farewell" {
			t.Fatalf("Expected single farewell result, got %+v", results)
		}
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		if results := NewHNSW().Nearest([]float32{1, 0, 0}, 5); len(results) != 0 {
			t.Errorf("Expected no results from empty index, got %d", len(results))
		}
	})

	t.Run("Remove", func(t *testing.T) {
		idx.Remove("greeting", "aa")
		if idx.Len() != 2 {
			t.Errorf("Expected 2 entries after remove, got %d", idx.Len())
		}
		results := idx.Nearest([]float32{1, 0, 0}, 1)
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
		if results[0].VariationID == "aa" {
			t.Errorf("Removed entry still returned: %+v", results)
		}
		// The survivor comes back fully populated, not as a stale
		// graph node with missing fields.
		if results[0].Key != "greeting" || results[0].VariationID != "ab" || results[0].Text != "Hi there" {
			t.Errorf("Expected live greeting/ab hit, got %+v", results[0])
		}

		idx.Remove("greeting", "aa") // no-op
		if idx.Len() != 2 {
			t.Errorf("Expected repeat remove to be a no-op, got %d entries", idx.Len())
		}
	})

	t.Run("ReplacedVector", func(t *testing.T) {
		idx.Upsert(entry("farewell", "ba", "Goodbye", []float32{0, 0, 1}))
		if idx.Len() != 2 {
			t.Fatalf("Expected 2 entries after replace, got %d", idx.Len())
		}

		results := idx.Nearest([]float32{0, 0, 1}, 1)
		if len(results) != 1 || results[0].VariationID != "ba" || results[0].Score < 0.99 {
			t.Errorf("Expected replaced vector to score ~1, got %+v", results)
		}

		// A query near the pre-replacement vector must score ba by its
		// current vector, not the superseded one.
		for _, r := range idx.Nearest([]float32{0, 1, 0}, 2) {
			if r.VariationID == "ba" && r.Score > 0.5 {
				t.Errorf("Superseded vector leaked into scoring: %+v", r)
			}
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		idx.Remove("greeting", "ab")
		idx.Remove("farewell", "ba")
		if idx.Len() != 0 {
			t.Fatalf("Expected empty index, got %d entries", idx.Len())
		}
		if results := idx.Nearest([]float32{1, 0, 0}, 5); len(results) != 0 {
			t.Errorf("Expected no results after removing everything, got %+v", results)
		}
	})
}
