package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvEngineID, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dofollow_links.csv", cfg.Output.Path)
	assert.Equal(t, 20*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, 8, cfg.Crawler.Parallelism)
	assert.False(t, cfg.Crawler.FollowRobotsTxt)
	assert.Equal(t, 1.0, cfg.Search.RequestsPerSecond)
	assert.Empty(t, cfg.Search.APIKey)
	assert.Empty(t, cfg.Classifier.FormTokens)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "key-123")
	t.Setenv(EnvEngineID, "cx-456")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Search.APIKey)
	assert.Equal(t, "cx-456", cfg.Search.EngineID)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvEngineID, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
search:
  engine_id: file-cx
  requests_per_second: 5
crawler:
  timeout: 5s
  parallelism: 2
classifier:
  form_tokens: [guestbook]
output:
  path: out.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-cx", cfg.Search.EngineID)
	assert.Equal(t, 5.0, cfg.Search.RequestsPerSecond)
	assert.Equal(t, 5*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, 2, cfg.Crawler.Parallelism)
	assert.Equal(t, []string{"guestbook"}, cfg.Classifier.FormTokens)
	assert.Equal(t, "out.csv", cfg.Output.Path)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  api_key: from-file\n"), 0o644))
	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Search.APIKey)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Search:  SearchConfig{RequestsPerSecond: 1},
			Crawler: CrawlerConfig{Parallelism: 1, Timeout: time.Second},
			Output:  OutputConfig{Path: "out.csv"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero rate", mutate: func(c *Config) { c.Search.RequestsPerSecond = 0 }, wantErr: true},
		{name: "zero parallelism", mutate: func(c *Config) { c.Crawler.Parallelism = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Crawler.Timeout = 0 }, wantErr: true},
		{name: "empty output", mutate: func(c *Config) { c.Output.Path = "" }, wantErr: true},
		{name: "missing credentials are fine", mutate: func(c *Config) { c.Search.APIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
