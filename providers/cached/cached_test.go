package cached

import (
	"context"
	"errors"
	"testing"
)

type countingProvider struct {
	calls     int
	shouldErr bool
}

func (c *countingProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.shouldErr {
		return nil, errors.New("provider down")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingProvider) Close() {}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoizesRepeatedText", func(t *testing.T) {
		inner := &countingProvider{}
		p, err := New(inner, 10)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		first, err := p.EmbedText(ctx, "hello")
		if err != nil {
			t.Fatalf("EmbedText failed: %v", err)
		}
		second, err := p.EmbedText(ctx, "hello")
		if err != nil {
			t.Fatalf("EmbedText failed: %v", err)
		}

		if inner.calls != 1 {
			t.Errorf("Expected 1 inner call, got %d", inner.calls)
		}
		if first[0] != second[0] {
			t.Errorf("Cached vector differs: %v vs %v", first, second)
		}
	})

	t.Run("ErrorsNotCached", func(t *testing.T) {
		inner := &countingProvider{shouldErr: true}
		p, _ := New(inner, 10)

		if _, err := p.EmbedText(ctx, "hello"); err == nil {
			t.Fatal("Expected error")
		}

		inner.shouldErr = false
		if _, err := p.EmbedText(ctx, "hello"); err != nil {
			t.Fatalf("Expected recovery after provider error: %v", err)
		}
		if inner.calls != 2 {
			t.Errorf("Expected 2 inner calls, got %d", inner.calls)
		}
	})

	t.Run("EvictsAtCapacity", func(t *testing.T) {
		inner := &countingProvider{}
		p, _ := New(inner, 1)

		p.EmbedText(ctx, "one")
		p.EmbedText(ctx, "two") // evicts "one"
		p.EmbedText(ctx, "one") // re-embeds
		if inner.calls != 3 {
			t.Errorf("Expected 3 inner calls, got %d", inner.calls)
		}
	})
}
