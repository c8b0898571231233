// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// a hosted OpenAI-compatible service and for local models.
//
// # Supported Providers
//
//   - OpenAI: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002,
//     or any OpenAI-compatible endpoint through Config.BaseURL
//   - EmbedEverything: local models such as BAAI/bge-base-en-v1.5
//
// # Usage
//
//	// Create an OpenAI embedder
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:     "text-embedding-3-small",
//	    BatchSize: 100,
//	})
//
//	// Embed text
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// # Resilience
//
// RetryClient retries transient failures with exponential backoff and
// CircuitBreakerClient stops calling a failing provider for a cool-down
// period. Both wrap any Client:
//
//	client = embedder.NewCircuitBreakerClient(
//	    embedder.NewRetryClient(client, nil), settings, logger, "embedding")
package embedder
