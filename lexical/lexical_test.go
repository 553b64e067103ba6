package lexical

import "testing"

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	phrases := []struct{ key, id, text string }{
		{"greeting", "aa", "Hello"},
		{"greeting", "ab", "Hi there"},
		{"farewell", "ba", "Goodbye"},
		{"farewell", "bb", "See you later"},
	}
	for _, p := range phrases {
		if err := idx.Upsert(p.key, p.id, p.text); err != nil {
			t.Fatalf("Upsert(%s/%s) failed: %v", p.key, p.id, err)
		}
	}
	return idx
}

func TestSearch(t *testing.T) {
	idx := newTestIndex(t)

	t.Run("TokenMatch", func(t *testing.T) {
		hits, err := idx.Search("hello everyone", "", 3)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) == 0 {
			t.Fatal("Expected a hit for shared token")
		}
		best := hits[0]
		if best.Key != "greeting" || best.VariationID != "aa" || best.Text != "Hello" {
			t.Errorf("Expected greeting/aa Hello, got %+v", best)
		}
		if best.Score <= 0 {
			t.Errorf("Expected positive relevance, got %f", best.Score)
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		hits, err := idx.Search("GOODBYE", "", 1)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Key != "farewell" {
			t.Errorf("Expected farewell hit, got %+v", hits)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		hits, err := idx.Search("zzz qqq", "", 1)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("Expected no hits, got %+v", hits)
		}
	})

	t.Run("KeyRestricted", func(t *testing.T) {
		hits, err := idx.Search("see you", "farewell", 2)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 1 || hits[0].VariationID != "bb" {
			t.Errorf("Expected farewell/bb, got %+v", hits)
		}

		hits, err = idx.Search("see you", "greeting", 2)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("Expected no greeting hits for farewell wording, got %+v", hits)
		}
	})
}

func TestUpsertRemove(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.Remove("greeting", "aa"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	n, err := idx.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 phrases after remove, got %d", n)
	}

	hits, err := idx.Search("hello", "", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, h := range hits {
		if h.VariationID == "aa" {
			t.Errorf("Removed phrase still returned: %+v", h)
		}
	}

	// Re-indexing the same (key, id) replaces instead of duplicating.
	if err := idx.Upsert("greeting", "ab", "Howdy"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	n, _ = idx.Len()
	if n != 3 {
		t.Errorf("Expected 3 phrases after replace, got %d", n)
	}
	hits, _ = idx.Search("howdy", "", 1)
	if len(hits) != 1 || hits[0].VariationID != "ab" {
		t.Errorf("Expected replaced text to be searchable, got %+v", hits)
	}
	hits, _ = idx.Search("hi there", "", 5)
	for _, h := range hits {
		if h.VariationID == "ab" && h.Text == "Hi there" {
			t.Errorf("Superseded text still indexed: %+v", h)
		}
	}
}
