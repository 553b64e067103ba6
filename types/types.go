// Package types defines the shared data model for the phrase-matching
// engine: phrase variations, match results, and the interfaces that
// storage and embedding backends must satisfy.
package types

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Variation is one concrete wording of a canonical intent, together
// with its embedding vector. A Variation is immutable once stored;
// re-embedding requires removal and re-add so the derived index never
// drifts from the store.
type Variation struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// VariationID derives the stable identifier for a phrase text. The ID
// is content-addressed, so adding the same text under the same key is
// idempotent across processes and backends.
func VariationID(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:8])
}

// MatchResult is the outcome of resolving free-form user text against
// the phrase store. Matched is false when no stored phrase cleared the
// caller's threshold; Score then still carries the best similarity
// found so callers can log near-misses.
type MatchResult struct {
	Key         string  `json:"key,omitempty"`
	VariationID string  `json:"variation_id,omitempty"`
	Text        string  `json:"text,omitempty"`
	Score       float32 `json:"score"`
	Matched     bool    `json:"matched"`
}

// StoreBackend is the durable mapping from canonical intent keys to
// their ordered phrase variations. Implementations must be safe for
// concurrent use and must append one key's variations without
// rewriting unrelated keys.
type StoreBackend interface {
	// Append adds variations under key, skipping any variation whose ID
	// is already present for that key. It returns the variations that
	// were actually added.
	Append(ctx context.Context, key string, vars []Variation) ([]Variation, error)

	// Variations returns the stored variations for key in insertion
	// order. An unknown key yields an empty slice, not an error.
	Variations(ctx context.Context, key string) ([]Variation, error)

	// Keys returns all canonical intent keys in the store.
	Keys(ctx context.Context) ([]string, error)

	// KeysForText returns the keys under which the exact text is
	// already registered. Used to surface ambiguity warnings when the
	// same wording is ingested under a second key.
	KeysForText(ctx context.Context, text string) ([]string, error)

	// ForEach streams every stored variation, in key order, for index
	// rebuilds at startup. The walk stops on the first error returned
	// by fn.
	ForEach(ctx context.Context, fn func(key string, v Variation) error) error

	// Len returns the total number of stored variations across keys.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// EmbeddingProvider turns text into a fixed-dimension vector. Same
// text must yield the same vector for a given model version, and
// implementations must be safe to call concurrently. Blocking is
// bounded by ctx; on cancellation or timeout the provider returns the
// context error.
type EmbeddingProvider interface {
	// EmbedText computes the embedding vector for text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// Close frees any resources held by the provider.
	Close()
}

// BackendType identifies a store backend implementation.
type BackendType string

const (
	BackendMemory BackendType = "memory"
	BackendFile   BackendType = "file"
	BackendSQLite BackendType = "sqlite"
	BackendRedis  BackendType = "redis"
)

// BackendConfig carries configuration for store backends.
type BackendConfig struct {
	// Path is the file or database path for file and sqlite backends.
	Path string

	// For Redis.
	ConnectionString string
	Username         string
	Password         string
	Database         int
	Prefix           string
	DialTimeout      time.Duration
}
