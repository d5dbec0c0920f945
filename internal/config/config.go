// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Render  RenderConfig  `mapstructure:"render"`
	Storage StorageConfig `mapstructure:"storage"`
	Align   AlignConfig   `mapstructure:"align"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig identifies the periodical being measured.
type SiteConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	SitemapIndex string `mapstructure:"sitemap_index"`
	UserAgent    string `mapstructure:"user_agent"`
	CookiesPath  string `mapstructure:"cookies_path"`
}

// HTTPConfig configures fetch politeness and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int     `mapstructure:"timeout_seconds"`
	MaxRetries       int     `mapstructure:"max_retries"`
	BackoffInitialMs int     `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int     `mapstructure:"backoff_max_ms"`
	RequestsPerSec   float64 `mapstructure:"requests_per_sec"`
}

// RenderConfig configures the headless rendering fallback.
type RenderConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	MinTextBytes  int  `mapstructure:"min_text_bytes"`
}

// StorageConfig sets the on-disk roots for the cache, corpus, and outputs.
type StorageConfig struct {
	CacheDir   string `mapstructure:"cache_dir"`
	CorpusDir  string `mapstructure:"corpus_dir"`
	MetricsDir string `mapstructure:"metrics_dir"`
}

// AlignConfig governs issue/web alignment and deduplication.
type AlignConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

// MetricsConfig governs aggregation behavior.
type MetricsConfig struct {
	Clip bool `mapstructure:"clip"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("READLEVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.newyorker.com")
	v.SetDefault("site.sitemap_index", "/sitemaps/newyorker/sitemap-index.xml")
	v.SetDefault("site.user_agent", "readlevel-bot/0.1 (+https://github.com/periodical-labs/readlevel)")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("http.requests_per_sec", 1.0)
	v.SetDefault("render.enabled", true)
	v.SetDefault("render.max_parallel", 1)
	v.SetDefault("render.nav_timeout_seconds", 25)
	v.SetDefault("render.min_text_bytes", 2000)
	v.SetDefault("storage.cache_dir", "data/cache")
	v.SetDefault("storage.corpus_dir", "data/corpus")
	v.SetDefault("storage.metrics_dir", "data/metrics")
	v.SetDefault("align.window_days", 3)
	v.SetDefault("metrics.clip", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.Site.UserAgent == "" {
		return fmt.Errorf("site.user_agent must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RequestsPerSec <= 0 {
		return fmt.Errorf("http.requests_per_sec must be > 0")
	}
	if c.Render.Enabled && c.Render.MaxParallel <= 0 {
		return fmt.Errorf("render.max_parallel must be > 0 when rendering is enabled")
	}
	if c.Storage.CacheDir == "" || c.Storage.CorpusDir == "" || c.Storage.MetricsDir == "" {
		return fmt.Errorf("storage directories must be set")
	}
	if c.Align.WindowDays < 0 {
		return fmt.Errorf("align.window_days must be >= 0")
	}
	return nil
}

// RequestTimeout converts the HTTP timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
