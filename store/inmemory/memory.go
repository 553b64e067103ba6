// Package inmemory provides a map-backed phrase store. State is lost
// on process exit; intended for tests and ephemeral deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/mindset-labs/phrasematch/types"
)

// Backend implements types.StoreBackend with plain maps guarded by a
// read-write mutex.
type Backend struct {
	mu      sync.RWMutex
	phrases map[string][]types.Variation   // key -> variations in insertion order
	ids     map[string]map[string]struct{} // key -> set of variation IDs
	texts   map[string]map[string]struct{} // text -> set of keys
}

// New creates an empty in-memory phrase store.
func New() *Backend {
	return &Backend{
		phrases: make(map[string][]types.Variation),
		ids:     make(map[string]map[string]struct{}),
		texts:   make(map[string]map[string]struct{}),
	}
}

// Append adds variations under key, skipping IDs already present.
func (b *Backend) Append(ctx context.Context, key string, vars []types.Variation) ([]types.Variation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idSet, ok := b.ids[key]
	if !ok {
		idSet = make(map[string]struct{})
		b.ids[key] = idSet
	}

	var added []types.Variation
	for _, v := range vars {
		if _, exists := idSet[v.ID]; exists {
			continue
		}
		idSet[v.ID] = struct{}{}
		b.phrases[key] = append(b.phrases[key], v)

		keySet, ok := b.texts[v.Text]
		if !ok {
			keySet = make(map[string]struct{})
			b.texts[v.Text] = keySet
		}
		keySet[key] = struct{}{}

		added = append(added, v)
	}
	return added, nil
}

// Variations returns the stored variations for key in insertion order.
func (b *Backend) Variations(ctx context.Context, key string) ([]types.Variation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	vars := b.phrases[key]
	out := make([]types.Variation, len(vars))
	copy(out, vars)
	return out, nil
}

// Keys returns all canonical intent keys, sorted.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.phrases))
	for k := range b.phrases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// KeysForText returns the keys under which text is registered, sorted.
func (b *Backend) KeysForText(ctx context.Context, text string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keySet := b.texts[text]
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ForEach streams every stored variation in key order.
func (b *Backend) ForEach(ctx context.Context, fn func(key string, v types.Variation) error) error {
	keys, err := b.Keys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		vars, err := b.Variations(ctx, key)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the total number of stored variations.
func (b *Backend) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, vars := range b.phrases {
		n += len(vars)
	}
	return n, nil
}

// Close is a no-op for the in-memory backend.
func (b *Backend) Close() error {
	return nil
}
