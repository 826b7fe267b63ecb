package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/geoflow/ai/mock"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
	storbadger "github.com/poiesic/geoflow/storage/badger"
)

func newTestSearcher(t *testing.T) (*Searcher, storage.VectorStore, *aimock.MockEmbedder) {
	t.Helper()

	vectors, _, backend, err := storbadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})

	embedder := aimock.NewMockEmbedder()
	searcher, err := NewSearcher(vectors, embedder)
	require.NoError(t, err)

	return searcher, vectors, embedder
}

func storeEntry(t *testing.T, vectors storage.VectorStore, domain core.Domain, document string, vector []float32, countries []string) core.ID {
	t.Helper()

	id, err := vectors.Store(context.Background(), &core.VectorEntry{
		Domain:   domain,
		Vector:   vector,
		Document: document,
		Metadata: core.VectorMetadata{
			Countries:   countries,
			ProcessedAt: time.Now().UTC(),
		},
	})
	require.NoError(t, err)
	return id
}

func TestNewSearcherValidation(t *testing.T) {
	vectors, _, backend, err := storbadger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSearcher(nil, aimock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrVectorStoreRequired)

	_, err = NewSearcher(vectors, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestFindSimilarRanksBySimilarity(t *testing.T) {
	searcher, vectors, embedder := newTestSearcher(t)

	storeEntry(t, vectors, core.DomainTrade, "steel exports", []float32{1, 0, 0}, []string{"USA"})
	storeEntry(t, vectors, core.DomainTrade, "wheat exports", []float32{0.8, 0.6, 0}, []string{"FRA"})
	storeEntry(t, vectors, core.DomainTrade, "unrelated", []float32{0, 0, 1}, []string{"DEU"})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	results, err := searcher.FindSimilar(context.Background(), "metal trade", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "steel exports", results[0].Entry.Document)
	assert.Equal(t, "wheat exports", results[1].Entry.Document)
}

func TestFindSimilarCountryFilter(t *testing.T) {
	searcher, vectors, embedder := newTestSearcher(t)

	storeEntry(t, vectors, core.DomainTrade, "usa exports", []float32{1, 0, 0}, []string{"USA"})
	storeEntry(t, vectors, core.DomainTrade, "fra exports", []float32{1, 0, 0}, []string{"FRA"})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	results, err := searcher.FindSimilarWithMonitor(context.Background(), "exports", 10, Params{
		Countries: []string{"FRA"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fra exports", results[0].Entry.Document)
}

func TestFindSimilarDomainFilter(t *testing.T) {
	searcher, vectors, embedder := newTestSearcher(t)

	storeEntry(t, vectors, core.DomainTrade, "trade doc", []float32{1, 0, 0}, []string{"USA"})
	storeEntry(t, vectors, core.DomainMacroeconomic, "macro doc", []float32{1, 0, 0}, []string{"USA"})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	results, err := searcher.FindSimilarWithMonitor(context.Background(), "doc", 10, Params{
		Domain: core.DomainMacroeconomic,
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "macro doc", results[0].Entry.Document)
}

func TestFindSimilarVerbatimBoost(t *testing.T) {
	searcher, vectors, embedder := newTestSearcher(t)

	// Identical vectors: only the verbatim boost can separate them
	storeEntry(t, vectors, core.DomainTrade, "france wheat production data", []float32{1, 0, 0}, []string{"FRA"})
	storeEntry(t, vectors, core.DomainTrade, "germany steel production data", []float32{1, 0, 0}, []string{"DEU"})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	results, err := searcher.FindSimilar(context.Background(), "france wheat", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "france wheat production data", results[0].Entry.Document)
	assert.InDelta(t, 1.3, results[0].Score, 0.01)
	assert.InDelta(t, 1.0, results[1].Score, 0.01)
}

func TestFindSimilarEmbeddingError(t *testing.T) {
	searcher, _, embedder := newTestSearcher(t)

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	_, err := searcher.FindSimilar(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestFindSimilarMonitorCallbacks(t *testing.T) {
	searcher, vectors, embedder := newTestSearcher(t)

	storeEntry(t, vectors, core.DomainTrade, "france wheat exports", []float32{1, 0, 0}, []string{"FRA"})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	monitor := &recordingMonitor{}
	results, err := searcher.FindSimilarWithMonitor(context.Background(), "france wheat", 5, Params{}, monitor)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "france wheat", monitor.query)
	assert.Equal(t, 3, monitor.dimensions)
	assert.Len(t, monitor.searchIDs, 1)
	assert.Equal(t, 1, monitor.verbatimHits)
	assert.Len(t, monitor.finished, 1)
}

type recordingMonitor struct {
	query        string
	dimensions   int
	searchIDs    []uint64
	verbatimHits int
	finished     []*storage.VectorMatch
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string)              { m.query = query }
func (m *recordingMonitor) AfterEmbedding(dims int)         { m.dimensions = dims }
func (m *recordingMonitor) AfterVectorSearch(ids []uint64)  { m.searchIDs = ids }
func (m *recordingMonitor) VerbatimHit(_ *core.VectorEntry) { m.verbatimHits++ }
func (m *recordingMonitor) Finish(r []*storage.VectorMatch) { m.finished = r }
