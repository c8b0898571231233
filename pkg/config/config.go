package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Wiki holds the link-listing service settings
	Wiki WikiConfig `mapstructure:"wiki"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// Cache configuration
	Cache CacheConfig `mapstructure:"cache"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // color, text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// WikiConfig holds MediaWiki API settings
type WikiConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxContinuations  int           `mapstructure:"max_continuations"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, embedeverything
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// SearchConfig holds path search settings
type SearchConfig struct {
	MaxDepth          int           `mapstructure:"max_depth"`
	MinBeamWidth      int           `mapstructure:"min_beam_width"`
	Concurrency       int           `mapstructure:"concurrency"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxExpansions     int           `mapstructure:"max_expansions"`
	SkipFailedLookups bool          `mapstructure:"skip_failed_lookups"`
}

// CacheConfig holds settings for the optional on-disk link cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"` // zero keeps entries forever
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// RetryConfig holds retry settings for outbound calls
type RetryConfig struct {
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialDelay      time.Duration `mapstructure:"initial_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// Validate reports configuration values the search cannot run with.
func (c *Config) Validate() error {
	if c.Wiki.APIURL == "" {
		return fmt.Errorf("wiki.api_url is required")
	}
	if c.Search.MaxDepth < 1 {
		return fmt.Errorf("search.max_depth must be at least 1, got %d", c.Search.MaxDepth)
	}
	if c.Search.MinBeamWidth < 1 {
		return fmt.Errorf("search.min_beam_width must be at least 1, got %d", c.Search.MinBeamWidth)
	}
	switch c.Embedding.Provider {
	case "openai", "embedeverything":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "color")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Wiki defaults
	viper.SetDefault("wiki.api_url", "https://en.wikipedia.org/w/api.php")
	viper.SetDefault("wiki.user_agent", "linkpath/0.1 (https://github.com/soundprediction/linkpath)")
	viper.SetDefault("wiki.request_timeout", 15*time.Second)
	viper.SetDefault("wiki.requests_per_second", 10.0)
	viper.SetDefault("wiki.burst", 5)
	viper.SetDefault("wiki.max_continuations", 20)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "BAAI/bge-base-en-v1.5")
	viper.SetDefault("embedding.dimensions", 768)
	viper.SetDefault("embedding.batch_size", 256)

	// Search defaults
	viper.SetDefault("search.max_depth", 3)
	viper.SetDefault("search.min_beam_width", 5)
	viper.SetDefault("search.concurrency", 8)
	viper.SetDefault("search.timeout", 5*time.Minute)
	viper.SetDefault("search.max_expansions", 0)
	viper.SetDefault("search.skip_failed_lookups", true)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Retry defaults
	viper.SetDefault("retry.max_retries", 3)
	viper.SetDefault("retry.initial_delay", 500*time.Millisecond)
	viper.SetDefault("retry.max_delay", 10*time.Second)
	viper.SetDefault("retry.backoff_multiplier", 2.0)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", 7*24*time.Hour)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("cache.path", fmt.Sprintf("%s/.linkpath/links", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = baseURL
	}

	if apiURL := os.Getenv("WIKI_API_URL"); apiURL != "" {
		config.Wiki.APIURL = apiURL
	}
	if ua := os.Getenv("WIKI_USER_AGENT"); ua != "" {
		config.Wiki.UserAgent = ua
	}

	if path := os.Getenv("LINKPATH_CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}
}
