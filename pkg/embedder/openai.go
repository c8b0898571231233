package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder implements Client against the OpenAI embeddings endpoint
// or any OpenAI-compatible service reachable through Config.BaseURL.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates a new OpenAI embedder.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	config.applyDefaults(string(openai.SmallEmbedding3))

	var client *openai.Client
	if config.BaseURL != "" {
		// Use dummy API key if none provided (some services don't require authentication)
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		if !hasAPIPath(config.BaseURL) {
			clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/") + "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &OpenAIEmbedder{
		client: client,
		config: config,
	}
}

// Embed generates embeddings for the given texts, splitting them into
// batches of Config.BatchSize.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, e.config.BatchSize) {
		vectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.config.Model),
	}
	if strings.HasPrefix(e.config.Model, "text-embedding-3") {
		req.Dimensions = e.config.Dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("failed to create embeddings: %w: %v", ErrRateLimit, err)
		}
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, len(texts), len(resp.Data))
	}

	// Data carries an explicit index; do not rely on response order.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return vectors, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrEmptyResponse
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Close is a no-op; the HTTP client needs no cleanup.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// hasAPIPath checks if the URL already contains an API path
func hasAPIPath(baseURL string) bool {
	for _, p := range []string{"/v1", "/api/v1", "/openai/v1"} {
		if strings.HasSuffix(strings.TrimRight(baseURL, "/"), p) {
			return true
		}
	}
	return false
}
