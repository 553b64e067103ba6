// Package file provides a JSONL-backed phrase store. Each ingestion
// appends one line per variation, so adding to one key never rewrites
// the others; the full log is replayed into memory at open.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio"

	"github.com/mindset-labs/phrasematch/store/inmemory"
	"github.com/mindset-labs/phrasematch/types"
)

// record is one line of the append log.
type record struct {
	Key    string    `json:"key"`
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// Backend implements types.StoreBackend on a JSONL append log, with an
// in-memory mirror serving all reads.
type Backend struct {
	mu   sync.Mutex // serializes log writes
	path string
	f    *os.File
	mem  *inmemory.Backend
}

// New opens (or creates) the phrase log at path and replays it.
func New(path string) (*Backend, error) {
	b := &Backend{
		path: path,
		mem:  inmemory.New(),
	}

	if err := b.load(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening phrase log: %w", err)
	}
	b.f = f
	return b, nil
}

func (b *Backend) load() error {
	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening phrase log: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("phrase log line %d: %w", line, err)
		}
		if _, err := b.mem.Append(ctx, rec.Key, []types.Variation{{
			ID:     rec.ID,
			Text:   rec.Text,
			Vector: rec.Vector,
		}}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading phrase log: %w", err)
	}
	return nil
}

// Append adds variations under key and writes one log line per
// variation actually added. The log write happens first and the mirror
// is updated only after it succeeds, so a failed write never leaves
// the mirror holding variations the log does not.
func (b *Backend) Append(ctx context.Context, key string, vars []types.Variation) ([]types.Variation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.mem.Variations(ctx, key)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		known[v.ID] = struct{}{}
	}

	var fresh []types.Variation
	for _, v := range vars {
		if _, dup := known[v.ID]; dup {
			continue
		}
		known[v.ID] = struct{}{}
		fresh = append(fresh, v)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, v := range fresh {
		if err := enc.Encode(record{Key: key, ID: v.ID, Text: v.Text, Vector: v.Vector}); err != nil {
			return nil, fmt.Errorf("encoding phrase record: %w", err)
		}
	}

	if _, err := b.f.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("appending to phrase log: %w", err)
	}
	if err := b.f.Sync(); err != nil {
		return nil, fmt.Errorf("syncing phrase log: %w", err)
	}

	return b.mem.Append(ctx, key, fresh)
}

// Variations returns the stored variations for key in insertion order.
func (b *Backend) Variations(ctx context.Context, key string) ([]types.Variation, error) {
	return b.mem.Variations(ctx, key)
}

// Keys returns all canonical intent keys.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	return b.mem.Keys(ctx)
}

// KeysForText returns the keys under which text is registered.
func (b *Backend) KeysForText(ctx context.Context, text string) ([]string, error) {
	return b.mem.KeysForText(ctx, text)
}

// ForEach streams every stored variation in key order.
func (b *Backend) ForEach(ctx context.Context, fn func(key string, v types.Variation) error) error {
	return b.mem.ForEach(ctx, fn)
}

// Len returns the total number of stored variations.
func (b *Backend) Len(ctx context.Context) (int, error) {
	return b.mem.Len(ctx)
}

// Compact rewrites the log as one line per live variation. The rewrite
// goes through a temp file and rename, so a crash mid-compaction
// leaves the previous log intact.
func (b *Backend) Compact(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	err := b.mem.ForEach(ctx, func(key string, v types.Variation) error {
		return enc.Encode(record{Key: key, ID: v.ID, Text: v.Text, Vector: v.Vector})
	})
	if err != nil {
		return err
	}

	if err := b.f.Close(); err != nil {
		return fmt.Errorf("closing phrase log: %w", err)
	}
	if err := renameio.WriteFile(b.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("compacting phrase log: %w", err)
	}

	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopening phrase log: %w", err)
	}
	b.f = f
	return nil
}

// Close closes the underlying log file.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.f.Close()
}
