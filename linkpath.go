package linkpath

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/linkpath/pkg/embedder"
	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/metrics"
	"github.com/soundprediction/linkpath/pkg/ranker"
	"github.com/soundprediction/linkpath/pkg/search"
	"github.com/soundprediction/linkpath/pkg/types"
)

// PathFinder is the main interface for finding link paths between pages.
type PathFinder interface {
	// FindPath searches for a chain of links from start to goal following at
	// most maxDepth links. maxDepth <= 0 uses the configured default.
	FindPath(ctx context.Context, start, goal string, maxDepth int) (*types.PathResult, error)

	// GetLinks returns a page's canonical title and outbound links.
	GetLinks(ctx context.Context, title string) (*types.LinkResult, error)

	// Resolve returns the canonical title of a page.
	Resolve(ctx context.Context, title string) (string, error)

	// Close releases the embedder and the link store.
	Close() error
}

// Client is the main implementation of PathFinder. Its link and title caches
// live as long as the Client.
type Client struct {
	provider *links.CachedProvider
	resolver *links.CachedResolver
	embedder embedder.Client
	engine   *search.Engine
	store    links.Store
	config   *Config
	logger   *slog.Logger
}

// Config holds configuration for the Client.
type Config struct {
	// MaxDepth is used when FindPath is called with maxDepth <= 0.
	MaxDepth int

	// MinBeamWidth is the fewest candidates the ranker keeps per page.
	MinBeamWidth int

	// Search holds the engine options. Logger and Observer are filled in by
	// NewClient when empty.
	Search search.Options

	// Store persists link lookups across runs. Optional; closed by Close.
	Store links.Store

	// Metrics receives search, cache and request events. Optional.
	Metrics *metrics.Metrics
}

// NewDefaultConfig returns the configuration used when NewClient gets nil.
func NewDefaultConfig() *Config {
	return &Config{
		MaxDepth:     types.DefaultMaxDepth,
		MinBeamWidth: ranker.DefaultMinBeamWidth,
		Search:       search.DefaultOptions(),
	}
}

// NewClient creates a Client. provider and resolver are the uncached
// link-listing collaborators (usually one *wiki.Client); NewClient wraps
// them with per-client caches.
func NewClient(provider links.Provider, resolver links.Resolver, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if provider == nil || resolver == nil {
		return nil, errors.New("link provider and resolver are required")
	}
	if embedderClient == nil {
		return nil, errors.New("embedder is required")
	}
	if config == nil {
		config = NewDefaultConfig()
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = types.DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}

	cacheOpts := links.Options{Logger: logger, Store: config.Store}
	searchOpts := config.Search
	if searchOpts.Logger == nil {
		searchOpts.Logger = logger
	}
	if config.Metrics != nil {
		cacheOpts.Observer = config.Metrics
		if searchOpts.Observer == nil {
			searchOpts.Observer = config.Metrics
		}
	}

	cachedProvider := links.NewCachedProvider(provider, cacheOpts)
	cacheOpts.Store = nil
	cachedResolver := links.NewCachedResolver(resolver, cacheOpts)

	r := ranker.New(embedderClient, ranker.Options{MinBeamWidth: config.MinBeamWidth, Logger: logger})
	engine := search.NewEngine(&learningProvider{cachedProvider, cachedResolver}, cachedResolver, r, searchOpts)

	return &Client{
		provider: cachedProvider,
		resolver: cachedResolver,
		embedder: embedderClient,
		engine:   engine,
		store:    config.Store,
		config:   config,
		logger:   logger,
	}, nil
}

// FindPath implements PathFinder.
func (c *Client) FindPath(ctx context.Context, start, goal string, maxDepth int) (*types.PathResult, error) {
	if maxDepth <= 0 {
		maxDepth = c.config.MaxDepth
	}
	return c.engine.FindPath(ctx, start, goal, maxDepth)
}

// GetLinks implements PathFinder.
func (c *Client) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	res, err := c.provider.GetLinks(ctx, title)
	if err != nil {
		return nil, err
	}
	c.resolver.Remember(title, res.CanonicalTitle)
	return res, nil
}

// Resolve implements PathFinder.
func (c *Client) Resolve(ctx context.Context, title string) (string, error) {
	return c.resolver.Resolve(ctx, title)
}

// GetEmbedder returns the embedder client
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// Close implements PathFinder.
func (c *Client) Close() error {
	var errs []error
	if err := c.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// learningProvider seeds the resolver with the canonical title every link
// lookup reports, so expanded pages never need a separate resolution.
type learningProvider struct {
	provider *links.CachedProvider
	resolver *links.CachedResolver
}

func (p *learningProvider) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	res, err := p.provider.GetLinks(ctx, title)
	if err != nil {
		return nil, err
	}
	p.resolver.Remember(title, res.CanonicalTitle)
	return res, nil
}
