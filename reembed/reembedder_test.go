package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/geoflow/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembedder_Run(t *testing.T) {
	vectors := setupTestStore(t)
	ctx := context.Background()

	ids := storeTestEntries(t, vectors, 5)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		result := make([][]float32, len(texts))
		for i := range texts {
			result[i] = []float32{2.0, 0.0, 0.0}
		}
		return result, nil
	}

	var progress bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 3, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(vectors, embedder, config, &progress)

	err := reembedder.Run(ctx)
	require.NoError(t, err)

	out := progress.String()
	assert.Contains(t, out, "Starting reembedding of 5 entries")
	assert.Contains(t, out, "Reembedding complete. Processed 5 entries")

	// Every entry carries the fresh normalized vector
	for _, id := range ids {
		entry, err := vectors.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, entry.Vector, 3)
		assert.InDelta(t, 1.0, entry.Vector[0], 0.001)
	}
}

func TestReembedder_RunEmptyStore(t *testing.T) {
	vectors := setupTestStore(t)
	ctx := context.Background()

	var progress bytes.Buffer
	reembedder := NewReembedder(vectors, mock.NewMockEmbedder(), nil, &progress)

	err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, progress.String(), "No entries found")
}

func TestReembedder_RunEmbeddingFailure(t *testing.T) {
	vectors := setupTestStore(t)
	ctx := context.Background()

	storeTestEntries(t, vectors, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model unavailable")
	}

	var progress bytes.Buffer
	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(vectors, embedder, config, &progress)

	err := reembedder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestReembedder_NilConfigUsesDefaults(t *testing.T) {
	vectors := setupTestStore(t)

	reembedder := NewReembedder(vectors, mock.NewMockEmbedder(), nil, &bytes.Buffer{})

	assert.Equal(t, DefaultConfig().BatchSize, reembedder.config.BatchSize)
	assert.Equal(t, DefaultConfig().MaxRetries, reembedder.config.MaxRetries)
}
