package embedder

import (
	"context"
)

// Client turns text into fixed-dimension vectors.
type Client interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle embeds a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector size the client produces.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// Config holds settings shared by the embedding providers.
type Config struct {
	Model      string `json:"model"`
	BaseURL    string `json:"base_url,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	BatchSize  int    `json:"batch_size,omitempty"`
}

const defaultBatchSize = 256

// knownDimensions maps well-known model names to their vector sizes.
var knownDimensions = map[string]int{
	"text-embedding-ada-002": 1536,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"BAAI/bge-base-en-v1.5":  768,
	"BAAI/bge-small-en-v1.5": 384,
	"all-MiniLM-L6-v2":       384,
}

func (c *Config) applyDefaults(defaultModel string) {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Dimensions <= 0 {
		if d, ok := knownDimensions[c.Model]; ok {
			c.Dimensions = d
		} else {
			c.Dimensions = 1536
		}
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
}

// batches splits texts into consecutive chunks of at most size items.
func batches(texts []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(texts); i += size {
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[i:end])
	}
	return out
}
