package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/geoflow/ai"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

// BatchProcessor regenerates embeddings for batches of vector entries.
type BatchProcessor struct {
	vectors        storage.VectorStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(vectors storage.VectorStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		vectors:        vectors,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates fresh embeddings for a batch of entries and rewrites
// them in the store. Vectors are normalized after embedding so they stay
// compatible with cosine similarity search.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Document
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

	if len(embeddings) != len(entries) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entries), len(embeddings))
	}

	for i := range entries {
		entries[i].Vector = NormalizeVector(embeddings[i])
	}

	// Entry IDs derive from domain, document, and processing timestamp,
	// none of which change here, so each update lands on the same key.
	for _, entry := range entries {
		if err := bp.vectors.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to update entry %d: %w", entry.Id, err)
		}
	}

	return nil
}
