// Package options provides functional options for configuring Engine
// instances.
package options

import (
	"context"
	"errors"

	"github.com/mindset-labs/phrasematch/index"
	"github.com/mindset-labs/phrasematch/providers/cached"
	"github.com/mindset-labs/phrasematch/providers/gemini"
	"github.com/mindset-labs/phrasematch/providers/ollama"
	"github.com/mindset-labs/phrasematch/providers/openai"
	"github.com/mindset-labs/phrasematch/similarity"
	"github.com/mindset-labs/phrasematch/store"
	"github.com/mindset-labs/phrasematch/store/inmemory"
	"github.com/mindset-labs/phrasematch/types"
)

// Option represents a configuration option for the Engine.
type Option func(*Config) error

// Config holds the configuration for building an Engine.
type Config struct {
	Store      types.StoreBackend
	Provider   types.EmbeddingProvider
	Similarity similarity.Func
	NewIndex   func() index.Index
	CacheSize  int
}

// NewConfig creates a new configuration with default values: an
// in-memory store and cosine similarity.
func NewConfig() *Config {
	return &Config{
		Store:      inmemory.New(),
		Similarity: similarity.Cosine,
	}
}

// Apply applies all the given options to the config.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	if c.Provider == nil {
		return errors.New("embedding provider is required - use WithOpenAIProvider, WithOllamaProvider, etc.")
	}
	if c.Store == nil {
		return errors.New("store cannot be nil")
	}
	if c.Similarity == nil {
		return errors.New("similarity function cannot be nil")
	}
	if c.NewIndex == nil {
		compare := c.Similarity
		c.NewIndex = func() index.Index { return index.NewLinear(compare) }
	}
	if c.CacheSize > 0 {
		wrapped, err := cached.New(c.Provider, c.CacheSize)
		if err != nil {
			return err
		}
		c.Provider = wrapped
		c.CacheSize = 0
	}
	return nil
}

// WithMemoryStore sets up an in-memory phrase store (the default).
func WithMemoryStore() Option {
	return func(cfg *Config) error {
		cfg.Store = inmemory.New()
		return nil
	}
}

// WithFileStore sets up a JSONL append-log phrase store at path.
func WithFileStore(path string) Option {
	return func(cfg *Config) error {
		backend, err := store.New(types.BackendFile, types.BackendConfig{Path: path})
		if err != nil {
			return err
		}
		cfg.Store = backend
		return nil
	}
}

// WithSQLiteStore sets up a SQLite phrase store at path.
func WithSQLiteStore(path string) Option {
	return func(cfg *Config) error {
		backend, err := store.New(types.BackendSQLite, types.BackendConfig{Path: path})
		if err != nil {
			return err
		}
		cfg.Store = backend
		return nil
	}
}

// WithRedisStore sets up a Redis phrase store.
func WithRedisStore(addr string, db int) Option {
	return func(cfg *Config) error {
		backend, err := store.New(types.BackendRedis, types.BackendConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Store = backend
		return nil
	}
}

// WithCustomStore allows using a pre-configured store backend.
func WithCustomStore(backend types.StoreBackend) Option {
	return func(cfg *Config) error {
		if backend == nil {
			return errors.New("store cannot be nil")
		}
		cfg.Store = backend
		return nil
	}
}

// WithOpenAIProvider sets up the OpenAI embedding provider.
func WithOpenAIProvider(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := openai.Config{APIKey: apiKey}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := openai.New(config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithGeminiProvider sets up the Gemini embedding provider. The
// context is used for client construction only.
func WithGeminiProvider(ctx context.Context, apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := gemini.Config{APIKey: apiKey}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := gemini.New(ctx, config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithOllamaProvider sets up the Ollama embedding provider.
func WithOllamaProvider(baseURL string, model ...string) Option {
	return func(cfg *Config) error {
		config := ollama.Config{BaseURL: baseURL}
		if len(model) > 0 {
			config.Model = model[0]
		}
		cfg.Provider = ollama.New(config)
		return nil
	}
}

// WithCustomProvider allows using a pre-configured embedding provider.
func WithCustomProvider(provider types.EmbeddingProvider) Option {
	return func(cfg *Config) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.Provider = provider
		return nil
	}
}

// WithEmbeddingCache wraps the provider with an LRU memo of the given
// capacity. Order-independent: the wrap happens after all options are
// applied.
func WithEmbeddingCache(capacity int) Option {
	return func(cfg *Config) error {
		if capacity <= 0 {
			return errors.New("cache capacity must be positive")
		}
		cfg.CacheSize = capacity
		return nil
	}
}

// WithSimilarity sets a custom similarity function for the default
// exact index.
func WithSimilarity(fn similarity.Func) Option {
	return func(cfg *Config) error {
		if fn == nil {
			return errors.New("similarity function cannot be nil")
		}
		cfg.Similarity = fn
		return nil
	}
}

// WithHNSWIndex uses an approximate HNSW index instead of the exact
// linear scan. Scores are cosine similarity.
func WithHNSWIndex() Option {
	return func(cfg *Config) error {
		cfg.NewIndex = func() index.Index { return index.NewHNSW() }
		return nil
	}
}

// WithCustomIndex allows supplying an index factory. The factory is
// also used for rebuilds, so it must return a fresh, empty index.
func WithCustomIndex(newIndex func() index.Index) Option {
	return func(cfg *Config) error {
		if newIndex == nil {
			return errors.New("index factory cannot be nil")
		}
		cfg.NewIndex = newIndex
		return nil
	}
}
