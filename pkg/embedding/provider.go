package embedding

import "context"

// Dimension is the fixed embedding width the whole system assumes.
// nomic-embed-text and Gemini text-embedding-004 both emit 768 floats.
const Dimension = 768

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations must honor the context deadline so callers can classify
// timeouts as retryable.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
