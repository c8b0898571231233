package ranker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/linkpath/pkg/embedder"
	"github.com/soundprediction/linkpath/pkg/types"
	"github.com/soundprediction/linkpath/pkg/utils"
)

// DefaultMinBeamWidth is the smallest number of candidates kept at any depth.
const DefaultMinBeamWidth = 5

// EmbeddingError reports a failed or unusable embedding batch.
type EmbeddingError struct {
	Batch int // number of texts sent, goal included
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding batch of %d texts: %v", e.Batch, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, &EmbeddingError{}) to match any EmbeddingError.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)
	return ok
}

// Options configures a Ranker.
type Options struct {
	// MinBeamWidth is the lower bound on the number of candidates returned.
	// Zero means DefaultMinBeamWidth.
	MinBeamWidth int
	Logger       *slog.Logger
}

// Ranker orders candidate titles by semantic similarity to the goal and
// keeps a depth-dependent number of the best.
//
// Thread Safety: safe for concurrent use if the embedder is.
type Ranker struct {
	embedder embedder.Client
	minBeam  int
	logger   *slog.Logger
}

// New creates a Ranker backed by client.
func New(client embedder.Client, opts Options) *Ranker {
	if opts.MinBeamWidth <= 0 {
		opts.MinBeamWidth = DefaultMinBeamWidth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Ranker{
		embedder: client,
		minBeam:  opts.MinBeamWidth,
		logger:   opts.Logger,
	}
}

// TopN returns how many of n candidates are kept at depth:
// floor(n * (maxDepth-depth) / maxDepth), raised to minBeam and capped at n.
func TopN(n, depth, maxDepth, minBeam int) int {
	if n <= 0 {
		return 0
	}
	if maxDepth <= 0 {
		maxDepth = types.DefaultMaxDepth
	}
	remaining := maxDepth - depth
	if remaining < 0 {
		remaining = 0
	}
	if remaining > maxDepth {
		remaining = maxDepth
	}

	top := n * remaining / maxDepth
	if top < minBeam {
		top = minBeam
	}
	if top > n {
		top = n
	}
	return top
}

// Rank returns the best candidates for reaching the goal described by
// goalKeywords, best first. Equal scores keep their input order. An empty
// candidate list returns an empty result without embedding anything.
func (r *Ranker) Rank(ctx context.Context, candidates []string, goalKeywords []string, depth, maxDepth int) ([]string, error) {
	scored, err := r.RankScored(ctx, candidates, goalKeywords, depth, maxDepth)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out, nil
}

// RankScored is Rank with the similarity scores attached.
func (r *Ranker) RankScored(ctx context.Context, candidates []string, goalKeywords []string, depth, maxDepth int) ([]utils.ScoredItem[string], error) {
	if len(candidates) == 0 {
		return []utils.ScoredItem[string]{}, nil
	}

	query := strings.Join(goalKeywords, " ")
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	texts = append(texts, candidates...)

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &EmbeddingError{Batch: len(texts), Err: err}
	}
	if len(vectors) != len(texts) {
		return nil, &EmbeddingError{
			Batch: len(texts),
			Err:   fmt.Errorf("%w: got %d vectors", embedder.ErrCountMismatch, len(vectors)),
		}
	}

	goal := utils.Normalize(vectors[0])
	if goal == nil {
		return nil, &EmbeddingError{Batch: len(texts), Err: fmt.Errorf("goal vector is empty or zero")}
	}

	items := make([]utils.ScoredItem[string], len(candidates))
	for i, title := range candidates {
		v := vectors[i+1]
		if len(v) != len(goal) {
			return nil, &EmbeddingError{
				Batch: len(texts),
				Err:   fmt.Errorf("vector %d has dimension %d, want %d", i+1, len(v), len(goal)),
			}
		}
		// zero vectors score 0
		var score float64
		if unit := utils.Normalize(v); unit != nil {
			score = utils.DotProduct(goal, unit)
		}
		items[i] = utils.ScoredItem[string]{Item: title, Score: score}
	}

	top := TopN(len(candidates), depth, maxDepth, r.minBeam)
	ranked := utils.TopKByScore(items, top)

	r.logger.Debug("Ranked candidates",
		"candidates", len(candidates),
		"kept", len(ranked),
		"depth", depth,
		"max_depth", maxDepth)

	return ranked, nil
}
