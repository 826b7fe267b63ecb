package geoflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "geoflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	assert.Equal(t, "geoflow.db", cfg.Database.Path)
	assert.True(t, cfg.Providers.Comtrade.Enabled)
	assert.True(t, cfg.Providers.WorldBank.Enabled)
	assert.True(t, cfg.Providers.EPI.Enabled)
	assert.NotEmpty(t, cfg.Providers.Comtrade.BaseURL)
	assert.NotEmpty(t, cfg.Embedding.Host)
	assert.NotEmpty(t, cfg.Embedding.Model)
	assert.Zero(t, cfg.Retention.PruneAge.Duration, "pruning disabled by default")

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
[database]
path = "/var/lib/geoflow"

[providers.comtrade]
enabled = true
base_url = "https://comtrade.example.com/v1"
api_key = "secret"
timeout = "45s"
requests_per_second = 1.5
burst = 3

[providers.epi]
enabled = false

[embedding]
model = "nomic-embed-text"

[retention]
prune_age = "2160h"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/geoflow", cfg.Database.Path)
	assert.Equal(t, "https://comtrade.example.com/v1", cfg.Providers.Comtrade.BaseURL)
	assert.Equal(t, "secret", cfg.Providers.Comtrade.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Providers.Comtrade.Timeout.Duration)
	assert.Equal(t, 1.5, cfg.Providers.Comtrade.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Providers.Comtrade.Burst)
	assert.False(t, cfg.Providers.EPI.Enabled)
	assert.Equal(t, 2160*time.Hour, cfg.Retention.PruneAge.Duration)

	// Values absent from the file keep their defaults
	assert.True(t, cfg.Providers.WorldBank.Enabled)
	assert.Equal(t, DefaultServiceConfig().Providers.WorldBank.BaseURL, cfg.Providers.WorldBank.BaseURL)
	assert.Equal(t, DefaultServiceConfig().Embedding.Host, cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := writeConfigFile(t, "[database\npath=")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "  " },
			wantErr: ErrDatabasePathRequired.Error(),
		},
		{
			name: "all providers disabled",
			mutate: func(c *Config) {
				c.Providers.Comtrade.Enabled = false
				c.Providers.WorldBank.Enabled = false
				c.Providers.EPI.Enabled = false
			},
			wantErr: ErrNoProvidersEnabled.Error(),
		},
		{
			name:    "enabled provider missing base url",
			mutate:  func(c *Config) { c.Providers.Comtrade.BaseURL = "" },
			wantErr: "base_url is required",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Providers.EPI.RequestsPerSecond = -1 },
			wantErr: "requests_per_second",
		},
		{
			name:    "missing embedding model",
			mutate:  func(c *Config) { c.Embedding.Model = "" },
			wantErr: "EmbeddingModel",
		},
		{
			name:    "negative prune age",
			mutate:  func(c *Config) { c.Retention.PruneAge.Duration = -time.Hour },
			wantErr: "prune_age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServiceConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateDisabledProviderIgnored(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.Providers.EPI.Enabled = false
	cfg.Providers.EPI.BaseURL = "" // invalid, but disabled

	require.NoError(t, cfg.Validate())
}
