package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping ErrEmptyInput if the text is empty or
	// whitespace-only. Deterministic for a fixed model; vector
	// dimensionality is fixed per configured model.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one round trip. Empty or whitespace-only entries are filtered out
	// before the provider is called; the returned slice holds vectors for
	// the surviving entries in their original relative order. If every
	// entry is empty the result is an empty slice, not an error.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
