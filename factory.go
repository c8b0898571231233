package linkpath

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soundprediction/linkpath/pkg/config"
	"github.com/soundprediction/linkpath/pkg/embedder"
	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/metrics"
	"github.com/soundprediction/linkpath/pkg/search"
	"github.com/soundprediction/linkpath/pkg/wiki"
)

// NewFromConfig builds a Client from application configuration: a MediaWiki
// client, the configured embedder wrapped with retry and circuit breaking,
// and the optional on-disk link store. When reg is non-nil the Prometheus
// collectors are registered with it.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	wikiClient := NewWikiClient(cfg, logger, m)

	emb, err := NewEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	var store links.Store
	if cfg.Cache.Enabled {
		store, err = links.OpenBadgerStore(links.BadgerConfig{
			Path:   cfg.Cache.Path,
			TTL:    cfg.Cache.TTL,
			Logger: logger.With("component", "link_store"),
		})
		if err != nil {
			_ = emb.Close()
			return nil, err
		}
		logger.Info("Link store opened", "path", cfg.Cache.Path)
	}

	opts := search.Options{
		Concurrency:       cfg.Search.Concurrency,
		MaxExpansions:     cfg.Search.MaxExpansions,
		Timeout:           cfg.Search.Timeout,
		SkipFailedLookups: cfg.Search.SkipFailedLookups,
	}

	client, err := NewClient(wikiClient, wikiClient, emb, &Config{
		MaxDepth:     cfg.Search.MaxDepth,
		MinBeamWidth: cfg.Search.MinBeamWidth,
		Search:       opts,
		Store:        store,
		Metrics:      m,
	}, logger)
	if err != nil {
		_ = emb.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return client, nil
}

// NewWikiClient builds the MediaWiki client described by cfg. m may be nil.
func NewWikiClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *wiki.Client {
	var observer wiki.Observer
	if m != nil {
		observer = m
	}
	return wiki.NewClient(
		&http.Client{Timeout: cfg.Wiki.RequestTimeout},
		wiki.Config{
			APIURL:            cfg.Wiki.APIURL,
			UserAgent:         cfg.Wiki.UserAgent,
			RequestsPerSecond: cfg.Wiki.RequestsPerSecond,
			Burst:             cfg.Wiki.Burst,
			MaxContinuations:  cfg.Wiki.MaxContinuations,
			Retry: wiki.RetryConfig{
				MaxRetries:        cfg.Retry.MaxRetries,
				InitialDelay:      cfg.Retry.InitialDelay,
				MaxDelay:          cfg.Retry.MaxDelay,
				BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			},
			Breaker: wiki.BreakerConfig{
				Enabled:          cfg.CircuitBreaker.Enabled,
				MaxRequests:      cfg.CircuitBreaker.MaxRequests,
				Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
				Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
				ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
			},
		},
		logger.With("component", "wiki"),
		observer,
	)
}

// NewEmbedder builds the embedding client named by cfg.Embedding.Provider,
// wrapped with retry and, when enabled, a circuit breaker.
func NewEmbedder(cfg *config.Config, logger *slog.Logger) (embedder.Client, error) {
	embCfg := embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	}

	var base embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		base = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embCfg)
	case "embedeverything":
		client, err := embedder.NewEmbedEverythingClient(&embedder.EmbedEverythingConfig{Config: &embCfg})
		if err != nil {
			return nil, fmt.Errorf("create local embedder: %w", err)
		}
		base = client
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	logger.Info("Embedder ready", "provider", cfg.Embedding.Provider, "model", embCfg.Model)

	var client embedder.Client = embedder.NewRetryClient(base, &embedder.RetryConfig{
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialDelay:      cfg.Retry.InitialDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	})

	if cfg.CircuitBreaker.Enabled {
		client = embedder.NewCircuitBreakerClient(client, embedder.BreakerSettings{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, logger.With("component", "embedder"), "embedder")
	}
	return client, nil
}
