// Package config provides file-based configuration for the phrasectl
// command and other long-lived consumers of the phrase engine.
package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mindset-labs/phrasematch"
	"github.com/mindset-labs/phrasematch/options"
)

// Config holds the full engine configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Match    MatchConfig    `yaml:"match"`
}

// ProviderConfig configures the embedding provider.
type ProviderConfig struct {
	Name      string `yaml:"name"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	OllamaURL string `yaml:"ollama_url"`
}

// StoreConfig configures the phrase store backend.
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// MatchConfig configures query behavior.
type MatchConfig struct {
	Threshold float32 `yaml:"threshold"`
	Index     string  `yaml:"index"`
	CacheSize int     `yaml:"cache_size"`
}

// Default returns a Config with sensible defaults: an OpenAI provider
// keyed from the environment and a durable file store next to the
// user's other application data.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Provider: ProviderConfig{
			Name:      "openai",
			OllamaURL: "http://localhost:11434",
		},
		Store: StoreConfig{
			Backend:   "file",
			Path:      filepath.Join(homeDir, ".local", "share", "phrasematch", "phrases.jsonl"),
			RedisAddr: "localhost:6379",
		},
		Match: MatchConfig{
			Threshold: phrasematch.DefaultThreshold,
			Index:     "linear",
			CacheSize: 1000,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "gemini", "ollama":
	default:
		return errors.New("provider.name must be 'openai', 'gemini', or 'ollama'")
	}
	switch c.Store.Backend {
	case "memory", "file", "sqlite", "redis":
	default:
		return errors.New("store.backend must be 'memory', 'file', 'sqlite', or 'redis'")
	}
	if (c.Store.Backend == "file" || c.Store.Backend == "sqlite") && c.Store.Path == "" {
		return errors.New("store.path is required for file and sqlite backends")
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return errors.New("store.redis_addr is required for the redis backend")
	}
	switch c.Match.Index {
	case "linear", "hnsw":
	default:
		return errors.New("match.index must be 'linear' or 'hnsw'")
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		return errors.New("match.threshold must be between 0 and 1")
	}
	if c.Match.CacheSize < 0 {
		return errors.New("match.cache_size must not be negative")
	}
	return nil
}

// Options translates the configuration into engine options. API keys
// left blank in the file fall back to OPENAI_API_KEY or GEMINI_API_KEY
// from the environment.
func (c *Config) Options(ctx context.Context) ([]options.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []options.Option

	switch c.Provider.Name {
	case "openai":
		key := c.Provider.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, errors.New("openai provider requires provider.api_key or OPENAI_API_KEY")
		}
		opts = append(opts, options.WithOpenAIProvider(key, modelArg(c.Provider.Model)...))
	case "gemini":
		key := c.Provider.APIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			return nil, errors.New("gemini provider requires provider.api_key or GEMINI_API_KEY")
		}
		opts = append(opts, options.WithGeminiProvider(ctx, key, modelArg(c.Provider.Model)...))
	case "ollama":
		opts = append(opts, options.WithOllamaProvider(c.Provider.OllamaURL, modelArg(c.Provider.Model)...))
	}

	switch c.Store.Backend {
	case "memory":
		opts = append(opts, options.WithMemoryStore())
	case "file":
		opts = append(opts, options.WithFileStore(c.Store.Path))
	case "sqlite":
		opts = append(opts, options.WithSQLiteStore(c.Store.Path))
	case "redis":
		opts = append(opts, options.WithRedisStore(c.Store.RedisAddr, c.Store.RedisDB))
	}

	if c.Match.Index == "hnsw" {
		opts = append(opts, options.WithHNSWIndex())
	}
	if c.Match.CacheSize > 0 {
		opts = append(opts, options.WithEmbeddingCache(c.Match.CacheSize))
	}

	return opts, nil
}

func modelArg(model string) []string {
	if model == "" {
		return nil
	}
	return []string{model}
}

// Load reads configuration from path, falling back to defaults for
// any missing values. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories
// as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the conventional location of the config file.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "phrasematch", "config.yaml"), nil
}
