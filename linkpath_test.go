package linkpath

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/soundprediction/linkpath/pkg/links"
	"github.com/soundprediction/linkpath/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWiki is an in-memory link graph with redirects and call counters.
type fakeWiki struct {
	mu        sync.Mutex
	graph     map[string][]string
	redirects map[string]string
	linkCalls map[string]int
	resolves  map[string]int
}

func newFakeWiki(graph map[string][]string, redirects map[string]string) *fakeWiki {
	return &fakeWiki{
		graph:     graph,
		redirects: redirects,
		linkCalls: map[string]int{},
		resolves:  map[string]int{},
	}
}

func (w *fakeWiki) canonical(title string) string {
	if to, ok := w.redirects[title]; ok {
		return to
	}
	return title
}

func (w *fakeWiki) GetLinks(ctx context.Context, title string) (*types.LinkResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.linkCalls[title]++
	c := w.canonical(title)
	ls, ok := w.graph[c]
	if !ok {
		return nil, links.NewLookupError("links", title, links.ErrPageNotFound)
	}
	return &types.LinkResult{CanonicalTitle: c, Links: ls}, nil
}

func (w *fakeWiki) Resolve(ctx context.Context, title string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resolves[title]++
	return w.canonical(title), nil
}

// keywordEmbedder maps a text to (1, 0) when it shares a word with the
// goal, (0, 1) otherwise.
type keywordEmbedder struct {
	keywords []string
	closed   bool
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{0, 1}
		for _, k := range e.keywords {
			if strings.Contains(strings.ToLower(t), k) {
				out[i] = []float32{1, 0}
				break
			}
		}
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	v, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *keywordEmbedder) Dimensions() int { return 2 }

func (e *keywordEmbedder) Close() error {
	e.closed = true
	return nil
}

func TestClientFindPath(t *testing.T) {
	w := newFakeWiki(map[string][]string{
		"2005 Azores subtropical storm": {"Azores", "Portugal", "Weather satellite"},
		"Azores":                        {"Portugal"},
		"Portugal":                      {"Europe"},
		"Weather satellite":             {"GPS", "Meteorology"},
	}, map[string]string{
		"GPS": "Global Positioning System",
	})
	emb := &keywordEmbedder{keywords: []string{"satellite", "positioning", "gps"}}

	client, err := NewClient(w, w, emb, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := client.FindPath(ctx, "2005 Azores subtropical storm", "Global Positioning System", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2005 Azores subtropical storm", "Weather satellite", "Global Positioning System"}, res.Path)
	assert.Equal(t, 2, res.HopCount)
	assert.Equal(t, 1, res.Stats.Branches)

	// a second search reuses every cached lookup
	again, err := client.FindPath(ctx, "2005 Azores subtropical storm", "Global Positioning System", 2)
	require.NoError(t, err)
	assert.Equal(t, res.Path, again.Path)
	assert.Equal(t, 1, w.linkCalls["2005 Azores subtropical storm"])
	assert.Equal(t, 1, w.linkCalls["Weather satellite"])
	assert.Equal(t, 1, w.resolves["GPS"])

	require.NoError(t, client.Close())
	assert.True(t, emb.closed)
}

func TestClientFindPathNotFound(t *testing.T) {
	w := newFakeWiki(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}, nil)
	client, err := NewClient(w, w, &keywordEmbedder{}, nil, nil)
	require.NoError(t, err)

	res, err := client.FindPath(context.Background(), "A", "Z", 0)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, types.NotFoundHopCount, res.HopCount)
}

func TestClientGetLinksSeedsResolver(t *testing.T) {
	w := newFakeWiki(map[string][]string{
		"Global Positioning System": {"Satellite"},
	}, map[string]string{"GPS": "Global Positioning System"})
	client, err := NewClient(w, w, &keywordEmbedder{}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := client.GetLinks(ctx, "GPS")
	require.NoError(t, err)
	assert.Equal(t, "Global Positioning System", res.CanonicalTitle)

	got, err := client.Resolve(ctx, "GPS")
	require.NoError(t, err)
	assert.Equal(t, "Global Positioning System", got)
	assert.Equal(t, 0, w.resolves["GPS"])
}

func TestNewClientValidation(t *testing.T) {
	w := newFakeWiki(nil, nil)

	_, err := NewClient(nil, w, &keywordEmbedder{}, nil, nil)
	assert.Error(t, err)
	_, err = NewClient(w, w, nil, nil, nil)
	assert.Error(t, err)
}

func TestClientUsesConfiguredMaxDepth(t *testing.T) {
	w := newFakeWiki(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
		"D": {"Goal"},
	}, nil)
	cfg := NewDefaultConfig()
	cfg.MaxDepth = 4

	client, err := NewClient(w, w, &keywordEmbedder{}, cfg, nil)
	require.NoError(t, err)

	res, err := client.FindPath(context.Background(), "A", "Goal", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, res.HopCount)
}
