package links

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soundprediction/linkpath/pkg/types"
	"golang.org/x/sync/singleflight"
)

// Provider lists the outbound links of a page.
type Provider interface {
	// GetLinks returns the page's canonical title and its main-namespace
	// links. A page without links yields an empty set and a nil error; a
	// missing page or an unusable response yields a *LookupError.
	GetLinks(ctx context.Context, title string) (*types.LinkResult, error)
}

// Resolver maps a title to its canonical form.
type Resolver interface {
	// Resolve follows redirects and returns the final title, or the input
	// unchanged when it is not a redirect.
	Resolve(ctx context.Context, title string) (string, error)
}

// BatchResolver is implemented by resolvers that can canonicalize many
// titles in one round trip. The result maps each resolved input title to its
// canonical form; titles left out could not be resolved.
type BatchResolver interface {
	ResolveAll(ctx context.Context, titles []string) (map[string]string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, title string) (*types.LinkResult, error)

// GetLinks calls f.
func (f ProviderFunc) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	return f(ctx, title)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, title string) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, title string) (string, error) {
	return f(ctx, title)
}

// Observer receives cache events. Implemented by metrics.Metrics.
type Observer interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	LookupFailed(op string)
}

type noopObserver struct{}

func (noopObserver) CacheHit(string)     {}
func (noopObserver) CacheMiss(string)    {}
func (noopObserver) LookupFailed(string) {}

// Options configures the cached adapters.
type Options struct {
	Logger   *slog.Logger
	Observer Observer

	// Store, when set, persists link results across runs. Only
	// CachedProvider uses it.
	Store Store
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = noopObserver{}
	}
}

// CachedProvider memoizes a Provider per raw title for its own lifetime.
// Concurrent requests for one title share a single upstream call. Failures
// are not cached.
//
// Thread Safety: safe for concurrent use.
type CachedProvider struct {
	upstream Provider
	opts     Options

	mu      sync.RWMutex
	entries map[string]*types.LinkResult
	flight  singleflight.Group
}

// NewCachedProvider wraps upstream with a memoizing cache.
func NewCachedProvider(upstream Provider, opts Options) *CachedProvider {
	opts.defaults()
	return &CachedProvider{
		upstream: upstream,
		opts:     opts,
		entries:  make(map[string]*types.LinkResult),
	}
}

// GetLinks implements Provider. The returned result is shared between
// callers and must not be modified.
func (p *CachedProvider) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	if res, ok := p.lookup(title); ok {
		p.opts.Observer.CacheHit("links")
		return res, nil
	}

	// The shared lookup outlives any single caller; each caller only stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := p.flight.DoChan(title, func() (interface{}, error) {
		// another caller may have filled the entry while we waited
		if res, ok := p.lookup(title); ok {
			return res, nil
		}

		if p.opts.Store != nil {
			res, found, err := p.opts.Store.Get(shared, title)
			if err != nil {
				p.opts.Logger.Warn("Link store read failed", "title", title, "error", err)
			} else if found {
				p.opts.Logger.Debug("Loaded cached links from store", "title", title, "links", len(res.Links))
				p.remember(title, res)
				return res, nil
			}
		}

		p.opts.Observer.CacheMiss("links")
		res, err := p.upstream.GetLinks(shared, title)
		if err != nil {
			p.opts.Observer.LookupFailed("links")
			return nil, err
		}
		p.remember(title, res)

		if p.opts.Store != nil {
			if err := p.opts.Store.Put(shared, title, res); err != nil {
				p.opts.Logger.Warn("Link store write failed", "title", title, "error", err)
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*types.LinkResult), nil
	}
}

// Len returns the number of cached titles.
func (p *CachedProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

func (p *CachedProvider) lookup(title string) (*types.LinkResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res, ok := p.entries[title]
	return res, ok
}

func (p *CachedProvider) remember(title string, res *types.LinkResult) {
	p.mu.Lock()
	p.entries[title] = res
	p.mu.Unlock()
}

// CachedResolver memoizes a Resolver for its own lifetime. Concurrent
// requests for one title share a single upstream call. After resolving t to
// c it also records c -> c, so resolving a canonical title never queries
// upstream. Failures are not cached.
//
// Thread Safety: safe for concurrent use.
type CachedResolver struct {
	upstream Resolver
	opts     Options

	mu      sync.RWMutex
	entries map[string]string
	flight  singleflight.Group
}

// NewCachedResolver wraps upstream with a memoizing cache.
func NewCachedResolver(upstream Resolver, opts Options) *CachedResolver {
	opts.defaults()
	return &CachedResolver{
		upstream: upstream,
		opts:     opts,
		entries:  make(map[string]string),
	}
}

// Resolve implements Resolver.
func (r *CachedResolver) Resolve(ctx context.Context, title string) (string, error) {
	if canonical, ok := r.lookup(title); ok {
		r.opts.Observer.CacheHit("resolve")
		return canonical, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(title, func() (interface{}, error) {
		if canonical, ok := r.lookup(title); ok {
			return canonical, nil
		}

		r.opts.Observer.CacheMiss("resolve")
		canonical, err := r.upstream.Resolve(shared, title)
		if err != nil {
			r.opts.Observer.LookupFailed("resolve")
			return "", err
		}
		r.Remember(title, canonical)
		return canonical, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ResolveAll implements BatchResolver. Cached titles are answered locally and
// the rest go upstream in one batch when upstream is a BatchResolver, or one
// by one otherwise. On failure the titles that did resolve are returned along
// with the first error.
func (r *CachedResolver) ResolveAll(ctx context.Context, titles []string) (map[string]string, error) {
	out := make(map[string]string, len(titles))
	var misses []string
	for _, t := range titles {
		if canonical, ok := r.lookup(t); ok {
			r.opts.Observer.CacheHit("resolve")
			out[t] = canonical
			continue
		}
		misses = append(misses, t)
	}
	if len(misses) == 0 {
		return out, nil
	}

	batch, ok := r.upstream.(BatchResolver)
	if !ok {
		var firstErr error
		for _, t := range misses {
			canonical, err := r.Resolve(ctx, t)
			if err != nil {
				if !IsLookupError(err) {
					return out, err
				}
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			out[t] = canonical
		}
		return out, firstErr
	}

	for range misses {
		r.opts.Observer.CacheMiss("resolve")
	}
	resolved, err := batch.ResolveAll(ctx, misses)
	for t, canonical := range resolved {
		r.Remember(t, canonical)
		out[t] = canonical
	}
	if err != nil {
		r.opts.Observer.LookupFailed("resolve")
		return out, err
	}
	return out, nil
}

// Remember records that title resolves to canonical. Link lookups report the
// canonical form of the page they fetched, which lets callers seed the
// resolver without a second query.
func (r *CachedResolver) Remember(title, canonical string) {
	if title == "" || canonical == "" {
		return
	}
	r.mu.Lock()
	r.entries[title] = canonical
	if _, ok := r.entries[canonical]; !ok {
		r.entries[canonical] = canonical
	}
	r.mu.Unlock()
}

// Len returns the number of cached titles.
func (r *CachedResolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *CachedResolver) lookup(title string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[title]
	return c, ok
}
