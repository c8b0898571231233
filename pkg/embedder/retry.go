package embedder

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/linkpath/pkg/retry"
)

// RetryConfig holds configuration for retry behavior
type RetryConfig = retry.Config

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	cfg := retry.DefaultConfig()
	return &cfg
}

// RetryClient wraps an embedding client and adds retry logic with exponential backoff
type RetryClient struct {
	client Client
	config RetryConfig
}

// NewRetryClient creates a new retry client wrapper
func NewRetryClient(client Client, config *RetryConfig) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryClient{
		client: client,
		config: config.WithDefaults(),
	}
}

// Embed implements the Client interface with retry logic
func (r *RetryClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return retry.Do(ctx, r.config, IsRetryableError, func(int) ([][]float32, error) {
		return r.client.Embed(ctx, texts)
	})
}

// EmbedSingle implements the Client interface with retry logic
func (r *RetryClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := r.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyResponse
	}
	return vectors[0], nil
}

// Dimensions implements the Client interface
func (r *RetryClient) Dimensions() int {
	return r.client.Dimensions()
}

// Close implements the Client interface
func (r *RetryClient) Close() error {
	return r.client.Close()
}

// IsRetryableError determines if an error is worth retrying
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimit) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}

	errMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"502", "bad gateway",
		"503", "service unavailable",
		"504", "gateway timeout",
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"too many requests",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
