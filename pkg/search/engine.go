package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/ranker"
	"github.com/soundprediction/linkpath/pkg/types"
	"github.com/soundprediction/linkpath/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrBudgetExhausted is returned when a search hits its expansion budget
// before finishing. It is distinct from "no path found".
var ErrBudgetExhausted = errors.New("search expansion budget exhausted")

// Search outcomes reported to the Observer.
const (
	OutcomeFound          = "found"
	OutcomeNotFound       = "not_found"
	OutcomeBudget         = "budget_exhausted"
	OutcomeEmbeddingError = "embedding_error"
	OutcomeLookupError    = "lookup_error"
	OutcomeCancelled      = "cancelled"
	OutcomeError          = "error"
)

// Ranker orders candidate titles by relevance to the goal keywords and keeps
// the best of them. Implemented by *ranker.Ranker.
type Ranker interface {
	Rank(ctx context.Context, candidates []string, goalKeywords []string, depth, maxDepth int) ([]string, error)
}

// Observer receives one report per finished search. Implemented by
// metrics.Metrics.
type Observer interface {
	SearchFinished(outcome string, hops int, stats types.SearchStats)
}

type noopObserver struct{}

func (noopObserver) SearchFinished(string, int, types.SearchStats) {}

// Options configures an Engine.
type Options struct {
	// Concurrency bounds parallel title resolutions within one expansion.
	Concurrency int

	// MaxExpansions bounds the number of dequeued nodes whose links are
	// fetched. Zero means unlimited.
	MaxExpansions int

	// Timeout is the overall deadline of one search. Zero means none.
	Timeout time.Duration

	// SkipFailedLookups turns a failed link fetch for an expanded node into
	// a dead end instead of failing the search. Failures for the start
	// page and the goal always fail the search.
	SkipFailedLookups bool

	Logger         *slog.Logger
	Observer       Observer
	TracerProvider trace.TracerProvider
}

// DefaultOptions returns the options used by the command line and server.
func DefaultOptions() Options {
	return Options{
		Concurrency:       utils.DefaultSemaphoreLimit,
		Timeout:           5 * time.Minute,
		SkipFailedLookups: true,
	}
}

// Engine finds chains of links from a start page to a goal page.
//
// For each of the start page's ranked links it runs an independent
// breadth-first search with its own visited set, ranking and pruning the
// links of every expanded page. A branch is abandoned as soon as a page at
// the depth bound is dequeued.
//
// Thread Safety: safe for concurrent use; each FindPath call has its own
// state.
type Engine struct {
	provider links.Provider
	resolver links.Resolver
	ranker   Ranker
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewEngine creates an Engine.
func NewEngine(provider links.Provider, resolver links.Resolver, r Ranker, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = utils.DefaultSemaphoreLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	return &Engine{
		provider: provider,
		resolver: resolver,
		ranker:   r,
		opts:     opts,
		logger:   opts.Logger,
		tracer:   opts.TracerProvider.Tracer("linkpath.search"),
	}
}

// run holds the state of one FindPath call.
type run struct {
	e        *Engine
	logger   *slog.Logger
	maxDepth int
	goal     string
	keywords []string
	stats    types.SearchStats
}

// FindPath searches for a chain of links from start to goal, following at
// most maxDepth links. maxDepth <= 0 means types.DefaultMaxDepth.
//
// When no path is found the result has a nil Path, HopCount is
// types.NotFoundHopCount and the error is nil. Errors are reserved for
// faults: failed lookups of the start or goal, embedding failures, an
// exhausted budget, or cancellation.
func (e *Engine) FindPath(ctx context.Context, start, goal string, maxDepth int) (*types.PathResult, error) {
	start = strings.TrimSpace(start)
	goal = strings.TrimSpace(goal)
	if start == "" || goal == "" {
		return nil, types.ErrEmptyTitle
	}
	if maxDepth <= 0 {
		maxDepth = types.DefaultMaxDepth
	}

	searchID := uuid.New().String()
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	ctx, span := e.tracer.Start(ctx, "search.FindPath", trace.WithAttributes(
		attribute.String("search.id", searchID),
		attribute.String("search.start", start),
		attribute.String("search.goal", goal),
		attribute.Int("search.max_depth", maxDepth),
	))
	defer span.End()

	r := &run{
		e:        e,
		logger:   e.logger.With("search_id", searchID),
		maxDepth: maxDepth,
	}
	r.logger.Info("Starting path search", "start", start, "goal", goal, "max_depth", maxDepth)

	started := time.Now()
	path, err := r.search(ctx, start, goal)
	r.stats.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("search.branches", r.stats.Branches),
		attribute.Int("search.expansions", r.stats.Expansions),
		attribute.Int("search.dead_ends", r.stats.DeadEnds),
	)

	if err != nil {
		outcome := classify(err)
		e.opts.Observer.SearchFinished(outcome, 0, r.stats)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		r.logger.Error("Path search failed", "outcome", outcome, "error", err, "duration", r.stats.Duration)
		return nil, err
	}

	result := &types.PathResult{
		SearchID: searchID,
		Start:    start,
		Goal:     r.goal,
		Path:     path,
		HopCount: types.NotFoundHopCount,
		Stats:    r.stats,
	}
	if path == nil {
		e.opts.Observer.SearchFinished(OutcomeNotFound, 0, r.stats)
		span.SetAttributes(attribute.Bool("search.found", false))
		r.logger.Info("No path found",
			"start", start,
			"goal", r.goal,
			"branches", r.stats.Branches,
			"expansions", r.stats.Expansions,
			"duration", r.stats.Duration)
		return result, nil
	}

	result.HopCount = len(path) - 1
	e.opts.Observer.SearchFinished(OutcomeFound, result.HopCount, r.stats)
	span.SetAttributes(
		attribute.Bool("search.found", true),
		attribute.Int("search.hops", result.HopCount),
	)
	r.logger.Info("Path found",
		"path", strings.Join(path, " -> "),
		"hops", result.HopCount,
		"expansions", r.stats.Expansions,
		"duration", r.stats.Duration)
	return result, nil
}

// search returns the path, or nil when every branch is exhausted.
func (r *run) search(ctx context.Context, start, goal string) ([]string, error) {
	e := r.e

	goalCanonical, err := e.resolver.Resolve(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("resolve goal %q: %w", goal, err)
	}
	r.goal = goalCanonical
	r.keywords = strings.Fields(goalCanonical)

	startLinks, err := e.provider.GetLinks(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("fetch start page %q: %w", start, err)
	}

	root := start
	if startLinks.CanonicalTitle != "" {
		root = startLinks.CanonicalTitle
	}
	if root == r.goal {
		return []string{root}, nil
	}
	if !startLinks.HasLinks() {
		r.stats.DeadEnds++
		r.logger.Info("Start page has no links", "title", root)
		return nil, nil
	}

	ranked, err := r.rank(ctx, startLinks.Links, 0)
	if err != nil {
		return nil, err
	}
	firstHops, err := r.resolveCandidates(ctx, ranked)
	if err != nil {
		return nil, err
	}

	// a direct link ends the search before any branch starts
	for _, h := range firstHops {
		if h == r.goal {
			return []string{root, h}, nil
		}
	}

	seen := map[string]struct{}{root: {}, start: {}}
	for _, h := range firstHops {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}

		path, err := r.branch(ctx, start, root, h)
		if err != nil || path != nil {
			return path, err
		}
	}
	return nil, nil
}

// branch runs the breadth-first search seeded with one first hop.
func (r *run) branch(ctx context.Context, start, root, hop string) ([]string, error) {
	e := r.e
	r.stats.Branches++

	ctx, span := e.tracer.Start(ctx, "search.branch", trace.WithAttributes(
		attribute.String("branch.first_hop", hop),
	))
	defer span.End()

	visited := map[string]struct{}{root: {}, start: {}}
	queue := []types.SearchNode{{
		Title: hop,
		Path:  []string{root, hop},
		Depth: 1,
	}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node := queue[0]
		queue = queue[1:]
		r.logger.Debug("Expanding", "path", strings.Join(node.Path, " -> "), "depth", node.Depth)

		if node.Depth >= r.maxDepth {
			span.AddEvent("depth_bound", trace.WithAttributes(
				attribute.String("title", node.Title),
				attribute.Int("discarded", len(queue)),
			))
			break
		}

		if e.opts.MaxExpansions > 0 && r.stats.Expansions >= e.opts.MaxExpansions {
			return nil, fmt.Errorf("%w after %d expansions", ErrBudgetExhausted, r.stats.Expansions)
		}
		r.stats.Expansions++

		res, err := e.provider.GetLinks(ctx, node.Title)
		if err != nil {
			if !e.opts.SkipFailedLookups || !links.IsLookupError(err) {
				return nil, fmt.Errorf("fetch links of %q: %w", node.Title, err)
			}
			r.stats.FailedFetches++
			r.stats.DeadEnds++
			r.logger.Warn("Link lookup failed, treating as dead end", "title", node.Title, "error", err)
			continue
		}
		if !res.HasLinks() {
			r.stats.DeadEnds++
			span.AddEvent("dead_end", trace.WithAttributes(attribute.String("title", node.Title)))
			r.logger.Info("No further links found", "title", node.Title)
			continue
		}

		ranked, err := r.rank(ctx, res.Links, node.Depth)
		if err != nil {
			return nil, err
		}
		candidates, err := r.resolveCandidates(ctx, ranked)
		if err != nil {
			return nil, err
		}

		for _, l := range candidates {
			if l == r.goal {
				span.SetAttributes(attribute.Bool("branch.found", true))
				return types.ExtendPath(node.Path, l), nil
			}
			if _, ok := visited[l]; ok {
				continue
			}
			visited[l] = struct{}{}
			queue = append(queue, types.SearchNode{
				Title: l,
				Path:  types.ExtendPath(node.Path, l),
				Depth: node.Depth + 1,
			})
		}
	}
	return nil, nil
}

func (r *run) rank(ctx context.Context, candidates []string, depth int) ([]string, error) {
	r.stats.RankedBatches++
	ranked, err := r.e.ranker.Rank(ctx, candidates, r.keywords, depth, r.maxDepth)
	if err != nil {
		return nil, fmt.Errorf("rank %d candidates at depth %d: %w", len(candidates), depth, err)
	}
	return ranked, nil
}

// resolveCandidates canonicalizes ranked titles, keeping their order. A
// title whose lookup fails is used as it is.
func (r *run) resolveCandidates(ctx context.Context, titles []string) ([]string, error) {
	out := make([]string, len(titles))

	if batch, ok := r.e.resolver.(links.BatchResolver); ok {
		resolved, err := batch.ResolveAll(ctx, titles)
		if err != nil {
			if !links.IsLookupError(err) {
				return nil, err
			}
			r.logger.Debug("Title resolution failed, using raw titles", "titles", len(titles), "error", err)
		}
		for i, t := range titles {
			if c, ok := resolved[t]; ok {
				out[i] = c
			} else {
				out[i] = t
			}
		}
		return out, nil
	}

	resolved, errs := utils.MapOrdered(ctx, r.e.opts.Concurrency, titles, r.e.resolver.Resolve)
	for i, t := range titles {
		if err := errs[i]; err != nil {
			if !links.IsLookupError(err) {
				return nil, err
			}
			r.logger.Debug("Title resolution failed, using raw title", "title", t, "error", err)
			out[i] = t
			continue
		}
		out[i] = resolved[i]
	}
	return out, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrBudgetExhausted):
		return OutcomeBudget
	case errors.Is(err, &ranker.EmbeddingError{}):
		return OutcomeEmbeddingError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case links.IsLookupError(err):
		return OutcomeLookupError
	default:
		return OutcomeError
	}
}
