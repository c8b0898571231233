package embedder

import "errors"

// Common embedding client errors
var (
	// ErrEmptyResponse indicates the provider returned no vectors
	ErrEmptyResponse = errors.New("the embedding provider returned an empty response")

	// ErrCountMismatch indicates the provider returned a different number of
	// vectors than texts were sent
	ErrCountMismatch = errors.New("embedding count does not match input count")

	// ErrRateLimit indicates the rate limit has been exceeded
	ErrRateLimit = errors.New("rate limit exceeded. Please try again later")
)
