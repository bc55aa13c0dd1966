package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.Model)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 6000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 500, cfg.Chunking.OverlapSize)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Empty(t, cfg.OpenAI.APIKey)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[openai]
api_key = "sk-test"
model = "text-embedding-3-large"

[chunking]
max_chunk_size = 4000
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.Model)
	assert.Equal(t, 4000, cfg.Chunking.MaxChunkSize)
	// Untouched sections keep defaults.
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 500, cfg.Chunking.OverlapSize)
}

func TestEnvKeyOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[openai]
api_key = "sk-from-file"
`), 0600))

	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
backend = "cassandra"
`), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
backend = "postgres"
`), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "requires a dsn")
}

func TestLoadRejectsBadChunking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[chunking]
max_chunk_size = 100
overlap_size = 100
`), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "overlap_size")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)

	// A second write must not clobber the existing file.
	err = WriteDefault(path)
	assert.ErrorContains(t, err, "already exists")
}
