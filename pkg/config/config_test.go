package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("WIKI_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Search.MaxDepth)
	assert.Equal(t, 5, cfg.Search.MinBeamWidth)
	assert.True(t, cfg.Search.SkipFailedLookups)
	assert.Equal(t, 5*time.Minute, cfg.Search.Timeout)
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, 15*time.Second, cfg.Wiki.RequestTimeout)
	assert.Equal(t, "embedeverything", cfg.Embedding.Provider)
	assert.False(t, cfg.Cache.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WIKI_API_URL", "http://localhost:9999/w/api.php")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "http://localhost:9999/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Wiki:      WikiConfig{APIURL: "http://x"},
			Embedding: EmbeddingConfig{Provider: "openai"},
			Search:    SearchConfig{MaxDepth: 3, MinBeamWidth: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api url", mutate: func(c *Config) { c.Wiki.APIURL = "" }, wantErr: "wiki.api_url"},
		{name: "zero depth", mutate: func(c *Config) { c.Search.MaxDepth = 0 }, wantErr: "max_depth"},
		{name: "zero beam", mutate: func(c *Config) { c.Search.MinBeamWidth = 0 }, wantErr: "min_beam_width"},
		{name: "bad provider", mutate: func(c *Config) { c.Embedding.Provider = "magic" }, wantErr: "unknown embedding provider"},
		{name: "cache without path", mutate: func(c *Config) { c.Cache.Enabled = true }, wantErr: "cache.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
