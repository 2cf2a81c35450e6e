package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// BatchProcessor re-embeds batches of chunks belonging to one document.
type BatchProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	maxRetries      int
	retryBaseDelay  time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(chunkRepository storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		maxRetries:      maxRetries,
		retryBaseDelay:  retryBaseDelay,
	}
}

// Process re-embeds a batch of chunks and writes the new vectors back.
// Vectors are normalized after embedding so dot-product similarity behaves
// as cosine similarity. Chunk identity and text are never modified.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	// Chunk text is never empty, so the embedder's empty-input filtering
	// cannot shrink the batch. A mismatch means something else went wrong.
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Embedding = NormalizeVector(embeddings[i])
	}

	if err := bp.chunkRepository.UpdateChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}

	return nil
}
