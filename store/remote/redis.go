// Package remote provides a Redis-backed phrase store for deployments
// where several processes share one phrase set.
package remote

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mindset-labs/phrasematch/types"
)

const defaultPrefix = "phrasematch:"

// Backend implements types.StoreBackend on Redis. Each intent key owns
// a list of JSON variation documents (preserving insertion order) plus
// a set of variation IDs for idempotent appends; a reverse set per
// text hash serves ambiguity lookups.
type Backend struct {
	client *redis.Client
	prefix string
}

// document is one variation as stored in Redis.
type document struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// parseRedisURL parses a Redis URL and returns redis.Options.
func parseRedisURL(connectionString string) (*redis.Options, error) {
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{Addr: parsedURL.Host}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		if path := strings.TrimPrefix(parsedURL.Path, "/"); path != "" {
			db, err := strconv.Atoi(path)
			if err != nil {
				return nil, fmt.Errorf("invalid Redis database in URL: %w", err)
			}
			opts.DB = db
		}

		return opts, nil
	}

	// Plain host:port.
	return &redis.Options{Addr: connectionString}, nil
}

// New creates a Redis phrase store from config.
func New(config types.BackendConfig) (*Backend, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Backend{client: client, prefix: prefix}, nil
}

func (b *Backend) keysKey() string { return b.prefix + "keys" }

func (b *Backend) listKey(key string) string { return b.prefix + "phrases:" + key }

func (b *Backend) idsKey(key string) string { return b.prefix + "ids:" + key }

func (b *Backend) textKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return b.prefix + "text:" + hex.EncodeToString(h[:8])
}

// Append adds variations under key, skipping IDs already present.
func (b *Backend) Append(ctx context.Context, key string, vars []types.Variation) ([]types.Variation, error) {
	var added []types.Variation
	for _, v := range vars {
		// SADD doubles as the dedupe check: 0 means the ID was known.
		n, err := b.client.SAdd(ctx, b.idsKey(key), v.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("registering variation ID: %w", err)
		}
		if n == 0 {
			continue
		}

		doc, err := json.Marshal(document{ID: v.ID, Text: v.Text, Vector: v.Vector})
		if err != nil {
			return nil, fmt.Errorf("encoding variation: %w", err)
		}

		pipe := b.client.TxPipeline()
		pipe.RPush(ctx, b.listKey(key), doc)
		pipe.SAdd(ctx, b.keysKey(), key)
		pipe.SAdd(ctx, b.textKey(v.Text), key)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("appending variation to Redis: %w", err)
		}
		added = append(added, v)
	}
	return added, nil
}

// Variations returns the stored variations for key in insertion order.
func (b *Backend) Variations(ctx context.Context, key string) ([]types.Variation, error) {
	raw, err := b.client.LRange(ctx, b.listKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading variations from Redis: %w", err)
	}

	vars := make([]types.Variation, 0, len(raw))
	for _, item := range raw {
		var doc document
		if err := json.Unmarshal([]byte(item), &doc); err != nil {
			return nil, fmt.Errorf("decoding variation: %w", err)
		}
		vars = append(vars, types.Variation{ID: doc.ID, Text: doc.Text, Vector: doc.Vector})
	}
	return vars, nil
}

// Keys returns all canonical intent keys, sorted.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.client.SMembers(ctx, b.keysKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("reading keys from Redis: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// KeysForText returns the keys under which text is registered, sorted.
func (b *Backend) KeysForText(ctx context.Context, text string) ([]string, error) {
	keys, err := b.client.SMembers(ctx, b.textKey(text)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading text keys from Redis: %w", err)
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
			if err := fn(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the total number of stored variations.
func (b *Backend) Len(ctx context.Context) (int, error) {
	keys, err := b.Keys(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, key := range keys {
		n, err := b.client.LLen(ctx, b.listKey(key)).Result()
		if err != nil {
			return 0, fmt.Errorf("counting variations in Redis: %w", err)
		}
		total += int(n)
	}
	return total, nil
}

// Close closes the Redis client.
func (b *Backend) Close() error {
	return b.client.Close()
}
