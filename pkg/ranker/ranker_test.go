package ranker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/soundprediction/linkpath/pkg/embedder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableEmbedder returns fixed vectors per text and counts calls.
type tableEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	calls    int
	batches  [][]string
	err      error
	short    bool
}

func (e *tableEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out = append(out, v)
		} else {
			out = append(out, e.fallback)
		}
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *tableEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	v, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *tableEmbedder) Dimensions() int { return 2 }
func (e *tableEmbedder) Close() error    { return nil }

var _ embedder.Client = (*tableEmbedder)(nil)

func TestTopN(t *testing.T) {
	tests := []struct {
		name                 string
		n, depth, max, minBm int
		want                 int
	}{
		{"depth zero keeps all", 30, 0, 3, 5, 30},
		{"depth one keeps two thirds", 30, 1, 3, 5, 20},
		{"depth two keeps one third", 30, 2, 3, 5, 10},
		{"floor applies", 10, 1, 3, 5, 6},
		{"min beam raises", 9, 2, 3, 5, 5},
		{"capped at n", 3, 2, 3, 5, 3},
		{"at max depth keeps min beam", 100, 3, 3, 5, 5},
		{"past max depth keeps min beam", 100, 7, 3, 5, 5},
		{"zero max depth uses default", 30, 1, 0, 5, 20},
		{"empty", 0, 0, 3, 5, 0},
		{"custom beam", 100, 2, 2, 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopN(tt.n, tt.depth, tt.max, tt.minBm))
		})
	}
}

func TestRankOrdersBySimilarity(t *testing.T) {
	emb := &tableEmbedder{
		vectors: map[string][]float32{
			"Global Positioning System": {1, 0},
			"Satellite":                 {0.9, 0.1},
			"Cooking":                   {0, 1},
			"Navigation":                {0.7, 0.7},
			"Opera":                     {-1, 0},
		},
		fallback: []float32{0, 1},
	}
	r := New(emb, Options{})

	got, err := r.Rank(context.Background(),
		[]string{"Cooking", "Opera", "Navigation", "Satellite"},
		[]string{"Global", "Positioning", "System"}, 0, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Satellite", "Navigation", "Cooking", "Opera"}, got)
	require.Equal(t, 1, emb.calls)
	assert.Equal(t, []string{"Global Positioning System", "Cooking", "Opera", "Navigation", "Satellite"}, emb.batches[0])
}

func TestRankBound(t *testing.T) {
	emb := &tableEmbedder{fallback: []float32{1, 1}}
	r := New(emb, Options{})

	candidates := make([]string, 40)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("Page %d", i)
	}

	for depth := 0; depth < 3; depth++ {
		got, err := r.Rank(context.Background(), candidates, []string{"goal"}, depth, 3)
		require.NoError(t, err)
		assert.Len(t, got, TopN(len(candidates), depth, 3, DefaultMinBeamWidth))
		assert.LessOrEqual(t, len(got), len(candidates))
	}

	got, err := r.Rank(context.Background(), candidates[:2], []string{"goal"}, 2, 3)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	emb := &tableEmbedder{fallback: []float32{0.5, 0.5}}
	r := New(emb, Options{})
	candidates := []string{"e", "d", "c", "b", "a", "f", "g"}

	first, err := r.Rank(context.Background(), candidates, []string{"goal"}, 0, 3)
	require.NoError(t, err)
	second, err := r.Rank(context.Background(), candidates, []string{"goal"}, 0, 3)
	require.NoError(t, err)

	assert.Equal(t, candidates, first)
	assert.Equal(t, first, second)
}

func TestRankEmptyCandidates(t *testing.T) {
	emb := &tableEmbedder{}
	r := New(emb, Options{})

	got, err := r.Rank(context.Background(), nil, []string{"goal"}, 1, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, emb.calls)
}

func TestRankZeroVectorScoresZero(t *testing.T) {
	emb := &tableEmbedder{
		vectors: map[string][]float32{
			"goal": {1, 0},
			"zero": {0, 0},
			"away": {-1, 0},
			"near": {1, 0.1},
		},
	}
	r := New(emb, Options{})

	got, err := r.Rank(context.Background(), []string{"away", "zero", "near"}, []string{"goal"}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "zero", "away"}, got)
}

func TestRankEmbeddingErrors(t *testing.T) {
	tests := []struct {
		name string
		emb  *tableEmbedder
	}{
		{"embedder fails", &tableEmbedder{err: errors.New("model unavailable")}},
		{"count mismatch", &tableEmbedder{fallback: []float32{1, 0}, short: true}},
		{"dimension mismatch", &tableEmbedder{
			vectors:  map[string][]float32{"goal": {1, 0}},
			fallback: []float32{1, 0, 0},
		}},
		{"zero goal", &tableEmbedder{
			vectors:  map[string][]float32{"goal": {0, 0}},
			fallback: []float32{1, 0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.emb, Options{})
			_, err := r.Rank(context.Background(), []string{"a", "b"}, []string{"goal"}, 0, 3)
			require.Error(t, err)

			var embErr *EmbeddingError
			require.True(t, errors.As(err, &embErr))
			assert.Equal(t, 3, embErr.Batch)
			assert.ErrorIs(t, err, &EmbeddingError{})
		})
	}
}

func TestRankScored(t *testing.T) {
	emb := &tableEmbedder{
		vectors: map[string][]float32{
			"goal": {3, 4},
			"same": {6, 8},
			"orth": {-4, 3},
		},
	}
	r := New(emb, Options{MinBeamWidth: 1})

	got, err := r.RankScored(context.Background(), []string{"orth", "same"}, []string{"goal"}, 0, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "same", got[0].Item)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.InDelta(t, 0.0, got[1].Score, 1e-6)
}
