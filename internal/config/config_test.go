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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.newyorker.com", cfg.Site.BaseURL)
	assert.NotEmpty(t, cfg.Site.UserAgent)
	assert.Equal(t, 3, cfg.Align.WindowDays)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.Render.Enabled)
	assert.False(t, cfg.Metrics.Clip)
}

func TestLoadWithFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
site:
  base_url: https://magazine.example.com
  user_agent: test-agent
http:
  timeout_seconds: 45
  max_retries: 5
align:
  window_days: 2
metrics:
  clip: true
render:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://magazine.example.com", cfg.Site.BaseURL)
	assert.Equal(t, "test-agent", cfg.Site.UserAgent)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2, cfg.Align.WindowDays)
	assert.True(t, cfg.Metrics.Clip)
	assert.False(t, cfg.Render.Enabled)

	// Unset keys keep their defaults.
	assert.Equal(t, "data/cache", cfg.Storage.CacheDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Site.BaseURL = "" }},
		{"empty user agent", func(c *Config) { c.Site.UserAgent = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{"negative retries", func(c *Config) { c.HTTP.MaxRetries = -1 }},
		{"zero qps", func(c *Config) { c.HTTP.RequestsPerSec = 0 }},
		{"render enabled without slots", func(c *Config) { c.Render.MaxParallel = 0 }},
		{"missing storage", func(c *Config) { c.Storage.CorpusDir = "" }},
		{"negative window", func(c *Config) { c.Align.WindowDays = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base.Validate())
}
