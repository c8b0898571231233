package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/retry"
	"github.com/soundprediction/linkpath/pkg/types"
	"github.com/soundprediction/linkpath/pkg/utils"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// maxTitlesPerQuery is the MediaWiki limit on titles per request for
// anonymous clients.
const maxTitlesPerQuery = 50

// DefaultAPIURL is the English Wikipedia action API endpoint.
const DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

// Config configures a Client.
type Config struct {
	APIURL    string
	UserAgent string

	// RequestsPerSecond bounds outbound requests. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxContinuations bounds how many follow-up pages of links are fetched
	// for one title. Zero fetches only the first page.
	MaxContinuations int

	Retry   RetryConfig
	Breaker BreakerConfig
}

// RetryConfig holds retry behavior for failed requests.
type RetryConfig = retry.Config

// BreakerConfig configures the circuit breaker guarding the API.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// Observer receives per-request outcomes. Implemented by metrics.Metrics.
type Observer interface {
	ObserveRequest(op, outcome string, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, string, time.Duration) {}

// statusError is returned for non-200 responses.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client talks to a MediaWiki action API. It implements links.Provider,
// links.Resolver and links.BatchResolver without caching; wrap it with
// links.CachedProvider and links.CachedResolver.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	http     *http.Client
	cfg      Config
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger
	observer Observer
}

// NewClient creates a Client. httpClient carries the per-request timeout;
// nil uses a client with a 15 second timeout.
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger, observer Observer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "linkpath/0.1"
	}
	cfg.Retry = cfg.Retry.WithDefaults()

	c := &Client{
		http:     httpClient,
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.Breaker.Enabled {
		ratio := cfg.Breaker.ReadyToTripRatio
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "wiki",
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= ratio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				if to == gobreaker.StateOpen {
					logger.Error("Circuit breaker tripped", "breaker", name, "from", from.String(), "to", to.String())
					return
				}
				logger.Info("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// GetLinks implements links.Provider.
func (c *Client) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, links.NewLookupError("links", title, types.ErrEmptyTitle)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", "max")
	params.Set("titles", requestForm(title))

	var (
		result = &types.LinkResult{}
		seen   = make(map[string]struct{})
	)
	for page := 0; ; page++ {
		resp, err := c.query(ctx, "links", params)
		if err != nil {
			return nil, c.lookupError(ctx, "links", title, err)
		}
		if resp.Query == nil || len(resp.Query.Pages) == 0 {
			return nil, links.NewLookupError("links", title, fmt.Errorf("%w: no pages in response", links.ErrMalformedResponse))
		}

		p := resp.Query.Pages[0]
		if page == 0 {
			switch {
			case p.Invalid:
				return nil, links.NewLookupError("links", title, fmt.Errorf("%w: invalid title", links.ErrPageNotFound))
			case p.Missing:
				return nil, links.NewLookupError("links", title, links.ErrPageNotFound)
			}
			result.CanonicalTitle = p.Title
			if result.CanonicalTitle == "" {
				result.CanonicalTitle = newTitleMap(resp.Query).canonical(requestForm(title))
			}
		}

		for _, l := range p.Links {
			if l.NS != 0 || l.Title == "" {
				continue
			}
			if _, dup := seen[l.Title]; dup {
				continue
			}
			seen[l.Title] = struct{}{}
			result.Links = append(result.Links, l.Title)
		}

		if len(resp.Continue) == 0 {
			break
		}
		if page >= c.cfg.MaxContinuations {
			c.logger.Warn("Link list truncated", "title", title, "pages", page+1, "links", len(result.Links))
			break
		}
		for k, v := range resp.Continue {
			params.Set(k, v)
		}
	}

	if result.Links == nil {
		result.Links = []string{}
	}
	return result, nil
}

// Resolve implements links.Resolver. A title that is not a redirect comes
// back in its normalized form. Missing pages are not an error: they are
// simply not redirects.
func (c *Client) Resolve(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", links.NewLookupError("resolve", title, types.ErrEmptyTitle)
	}

	resolved, err := c.resolveChunk(ctx, []string{title})
	if err != nil {
		return "", c.lookupError(ctx, "resolve", title, err)
	}
	canonical, ok := resolved[title]
	if !ok {
		return "", links.NewLookupError("resolve", title, fmt.Errorf("%w: invalid title", links.ErrPageNotFound))
	}
	return canonical, nil
}

// ResolveAll implements links.BatchResolver. Titles are sent in groups of
// up to 50; titles the API rejects as invalid are left out of the result.
func (c *Client) ResolveAll(ctx context.Context, titles []string) (map[string]string, error) {
	out := make(map[string]string, len(titles))

	var pending []string
	for _, t := range utils.DedupeStrings(titles) {
		if strings.TrimSpace(t) == "" || strings.Contains(t, "|") {
			continue
		}
		pending = append(pending, t)
	}

	for start := 0; start < len(pending); start += maxTitlesPerQuery {
		end := start + maxTitlesPerQuery
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]
		resolved, err := c.resolveChunk(ctx, chunk)
		if err != nil {
			return out, c.lookupError(ctx, "resolve", strings.Join(chunk, "|"), err)
		}
		for k, v := range resolved {
			out[k] = v
		}
	}
	return out, nil
}

func (c *Client) resolveChunk(ctx context.Context, titles []string) (map[string]string, error) {
	forms := make([]string, len(titles))
	for i, t := range titles {
		forms[i] = requestForm(t)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	params.Set("titles", strings.Join(forms, "|"))

	resp, err := c.query(ctx, "resolve", params)
	if err != nil {
		return nil, err
	}
	if resp.Query == nil {
		return nil, fmt.Errorf("%w: no query in response", links.ErrMalformedResponse)
	}

	tm := newTitleMap(resp.Query)
	pages := pageByTitle(resp.Query.Pages)
	out := make(map[string]string, len(titles))
	for i, t := range titles {
		canonical := tm.canonical(forms[i])
		if p, ok := pages[canonical]; ok && p.Invalid {
			continue
		}
		out[t] = canonical
	}
	return out, nil
}

// lookupError classifies a failed query. Cancellation and an open breaker
// are returned as they are; anything else becomes a *links.LookupError.
func (c *Client) lookupError(ctx context.Context, op, title string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("wiki %s for %q: %w", op, title, err)
	}
	if errors.Is(err, links.ErrMalformedResponse) {
		return links.NewLookupError(op, title, err)
	}
	return links.NewLookupError(op, title, fmt.Errorf("%w: %v", links.ErrRequestFailed, err))
}

// query issues one API call with rate limiting, circuit breaking and retry.
func (c *Client) query(ctx context.Context, op string, params url.Values) (*apiResponse, error) {
	var lastErr error
	return retry.Do(ctx, c.cfg.Retry, isRetryable, func(attempt int) (*apiResponse, error) {
		if attempt > 0 {
			c.logger.Debug("Retrying wiki request", "op", op, "attempt", attempt, "error", lastErr)
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		started := time.Now()
		resp, err := c.execute(ctx, params)
		c.observer.ObserveRequest(op, outcome(err), time.Since(started))
		lastErr = err
		return resp, err
	})
}

func (c *Client) execute(ctx context.Context, params url.Values) (*apiResponse, error) {
	if c.cb == nil {
		return c.do(ctx, params)
	}
	v, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return v.(*apiResponse), nil
}

func (c *Client) do(ctx context.Context, params url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{Code: resp.StatusCode}
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", links.ErrMalformedResponse, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%w: api error %s: %s", links.ErrMalformedResponse, out.Error.Code, out.Error.Info)
	}
	return &out, nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, links.ErrMalformedResponse) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection reset")
}

func outcome(err error) string {
	var se *statusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, links.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &se):
		return fmt.Sprintf("http_%d", se.Code)
	default:
		return "error"
	}
}
