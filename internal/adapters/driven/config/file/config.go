// Package file loads application configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lexica/internal/textproc"
)

// Backend names accepted in [store].
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the application configuration tree. Field defaults are
// applied by Load; the file only needs to state what differs.
type Config struct {
	OpenAI   OpenAIConfig   `toml:"openai"`
	Store    StoreConfig    `toml:"store"`
	Chunking ChunkingConfig `toml:"chunking"`
	Sources  SourcesConfig  `toml:"sources"`
	Search   SearchConfig   `toml:"search"`
}

// OpenAIConfig configures the embedding provider.
type OpenAIConfig struct {
	// APIKey authenticates against the provider. May also be supplied
	// via the OPENAI_API_KEY environment variable, which wins over the
	// file so keys can stay out of it.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint, e.g. for a proxy.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model identifier.
	Model string `toml:"model"`

	// TimeoutSeconds bounds each provider request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RateLimit caps provider requests per second. 0 uses the default,
	// negative disables limiting.
	RateLimit float64 `toml:"rate_limit"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the index store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend string `toml:"backend"`

	// DataDir holds the SQLite database. Empty means ~/.lexica/data.
	DataDir string `toml:"data_dir"`

	// DSN is the PostgreSQL connection string.
	DSN string `toml:"dsn"`
}

// ChunkingConfig tunes how oversized texts are split before embedding.
type ChunkingConfig struct {
	MaxChunkSize int `toml:"max_chunk_size"`
	OverlapSize  int `toml:"overlap_size"`
}

// SourcesConfig locates the document source.
type SourcesConfig struct {
	// Dir is the directory of JSON document files to index.
	Dir string `toml:"dir"`
}

// SearchConfig holds search-side defaults.
type SearchConfig struct {
	// DefaultLimit is the result cap when the caller does not set one.
	DefaultLimit int `toml:"default_limit"`
}

// DefaultPath returns the default config file location,
// ~/.lexica/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lexica", "config.toml"), nil
}

// defaults returns a Config with every default applied.
func defaults() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "text-embedding-3-small",
			TimeoutSeconds: 30,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Chunking: ChunkingConfig{
			MaxChunkSize: textproc.DefaultMaxChunkSize,
			OverlapSize:  textproc.DefaultOverlapSize,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
		},
	}
}

// Load reads the config file at path, or the default location if path
// is empty. A missing file yields pure defaults. OPENAI_API_KEY in the
// environment overrides the file's api_key.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store backend %q requires a dsn", BackendPostgres)
	}
	if c.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive")
	}
	if c.Chunking.OverlapSize < 0 {
		return fmt.Errorf("overlap_size must not be negative")
	}
	if c.Chunking.OverlapSize >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("overlap_size must be smaller than max_chunk_size")
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive")
	}
	return nil
}

// WriteDefault writes a starter config file with every default spelled
// out, creating parent directories as needed. Refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(defaults())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	// Restricted permissions since the file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
