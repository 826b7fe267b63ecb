package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/geoflow/ai/mock"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/ingest"
	"github.com/poiesic/geoflow/provider"
	provmock "github.com/poiesic/geoflow/provider/mock"
	"github.com/poiesic/geoflow/storage"
	storbadger "github.com/poiesic/geoflow/storage/badger"
)

type testRig struct {
	pipeline *Pipeline
	vectors  storage.VectorStore
	graph    storage.GraphStore
}

func newTestRig(t *testing.T, connectors ...provider.Connector) *testRig {
	t.Helper()

	vectors, graph, backend, err := storbadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})

	coordinator, err := ingest.NewCoordinator(connectors)
	require.NoError(t, err)
	t.Cleanup(coordinator.Release)

	p, err := NewPipeline(coordinator, aimock.NewMockEmbedder(), vectors, graph)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return &testRig{pipeline: p, vectors: vectors, graph: graph}
}

func allDomainConnectors() []provider.Connector {
	return []provider.Connector{
		provmock.NewConnector("comtrade", core.DomainTrade),
		provmock.NewConnector("worldbank", core.DomainMacroeconomic),
		provmock.NewConnector("epi", core.DomainEnvironmental),
	}
}

func TestNewPipelineValidation(t *testing.T) {
	vectors, graph, backend, err := storbadger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	coordinator, err := ingest.NewCoordinator(allDomainConnectors())
	require.NoError(t, err)
	defer coordinator.Release()

	embedder := aimock.NewMockEmbedder()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "nil coordinator",
			run: func() error {
				_, err := NewPipeline(nil, embedder, vectors, graph)
				return err
			},
			want: ErrCoordinatorRequired,
		},
		{
			name: "nil embedder",
			run: func() error {
				_, err := NewPipeline(coordinator, nil, vectors, graph)
				return err
			},
			want: ErrEmbedderRequired,
		},
		{
			name: "nil vector store",
			run: func() error {
				_, err := NewPipeline(coordinator, embedder, nil, graph)
				return err
			},
			want: ErrVectorStoreRequired,
		},
		{
			name: "nil graph store",
			run: func() error {
				_, err := NewPipeline(coordinator, embedder, vectors, nil)
				return err
			},
			want: ErrGraphStoreRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	rig := newTestRig(t, allDomainConnectors()...)
	ctx := context.Background()

	report, err := rig.pipeline.Run(ctx, []string{"usa", "fra"}, provider.FetchParams{Period: "2024"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, []string{"USA", "FRA"}, report.Countries)
	assert.Empty(t, report.SourceErrors)
	require.Len(t, report.Domains, 3)

	for _, domain := range core.Domains {
		dr := report.Domains[domain]
		require.NotNil(t, dr, domain.String())
		assert.True(t, dr.Verdict.IsValid, domain.String())
		assert.Equal(t, 2, dr.CleanedRecordCount, domain.String())
		assert.NotZero(t, dr.EmbeddingID, domain.String())
		assert.Empty(t, dr.VectorError, domain.String())
		assert.Empty(t, dr.GraphError, domain.String())
		assert.Greater(t, dr.GraphRelationships, 0, domain.String())
	}

	// Every domain landed exactly one entry in the vector store
	stats, err := rig.vectors.Stats(ctx)
	require.NoError(t, err)
	for _, domain := range core.Domains {
		assert.Equal(t, 1, stats[domain], domain.String())
	}

	// Both stores carry the identical processing timestamp. The report
	// timestamp carries no sub-microsecond component, so it survives a
	// serialization round-trip unchanged.
	assert.True(t, report.ProcessedAt.Equal(report.ProcessedAt.Truncate(time.Microsecond)))
	entry, err := rig.vectors.Get(ctx, report.Domains[core.DomainTrade].EmbeddingID)
	require.NoError(t, err)
	assert.True(t, entry.Metadata.ProcessedAt.Equal(report.ProcessedAt))

	summary, err := rig.graph.Summarize(ctx, "USA")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DataPoints[core.DomainTrade])
	assert.Equal(t, 1, summary.DataPoints[core.DomainMacroeconomic])
	assert.Equal(t, 1, summary.DataPoints[core.DomainEnvironmental])
	assert.Equal(t, []string{"HS001"}, summary.Commodities)
	assert.Equal(t, report.ProcessedAt.UnixMicro(), summary.LastProcessedAt.UnixMicro())
}

func TestRunRecordsSourceErrors(t *testing.T) {
	failing := provmock.NewConnector("epi", core.DomainEnvironmental)
	failing.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
		return nil, provider.NewConnectorError("epi", provider.KindTimeout, errors.New("deadline exceeded"))
	}

	rig := newTestRig(t,
		provmock.NewConnector("comtrade", core.DomainTrade),
		provmock.NewConnector("worldbank", core.DomainMacroeconomic),
		failing,
	)

	report, err := rig.pipeline.Run(context.Background(), []string{"usa"}, provider.FetchParams{})
	require.NoError(t, err)

	require.Contains(t, report.SourceErrors, "epi")
	assert.NotContains(t, report.Domains, core.DomainEnvironmental)

	// Sibling sources are unaffected
	assert.NotZero(t, report.Domains[core.DomainTrade].EmbeddingID)
	assert.NotZero(t, report.Domains[core.DomainMacroeconomic].EmbeddingID)
}

func TestRunSkipsInvalidBatch(t *testing.T) {
	// Every record is missing most required fields, which lands the batch
	// far below the Fair thresholds.
	junk := provmock.NewConnector("comtrade", core.DomainTrade)
	junk.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
		return &core.ProviderPayload{
			Source:    "comtrade",
			Domain:    core.DomainTrade,
			Timestamp: time.Now().UTC(),
			Countries: []core.CountryData{{
				Code: "USA",
				Trade: []core.RawTradeRecord{
					{},
					{},
					{},
				},
			}},
		}, nil
	}

	rig := newTestRig(t, junk)

	report, err := rig.pipeline.Run(context.Background(), []string{"usa"}, provider.FetchParams{})
	require.NoError(t, err)

	dr := report.Domains[core.DomainTrade]
	require.NotNil(t, dr)
	assert.False(t, dr.Verdict.IsValid)
	assert.Zero(t, dr.EmbeddingID)
	assert.Zero(t, dr.GraphRelationships)

	// No writes reached either store
	stats, err := rig.vectors.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats[core.DomainTrade])

	_, err = rig.graph.Summarize(context.Background(), "USA")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunEmptyBatchNoWrites(t *testing.T) {
	empty := provmock.NewConnector("comtrade", core.DomainTrade)
	empty.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
		return &core.ProviderPayload{
			Source:    "comtrade",
			Domain:    core.DomainTrade,
			Timestamp: time.Now().UTC(),
		}, nil
	}

	rig := newTestRig(t, empty)

	report, err := rig.pipeline.Run(context.Background(), []string{"usa"}, provider.FetchParams{})
	require.NoError(t, err)

	dr := report.Domains[core.DomainTrade]
	require.NotNil(t, dr)
	assert.False(t, dr.Verdict.IsValid)
	assert.Equal(t, core.QualityUnusable, dr.Verdict.Quality)
	assert.Equal(t, 0, dr.CleanedRecordCount)

	stats, err := rig.vectors.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats[core.DomainTrade])
}

func TestRunHonorsCancellation(t *testing.T) {
	rig := newTestRig(t, allDomainConnectors()...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := rig.pipeline.Run(ctx, []string{"usa"}, provider.FetchParams{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
}

func TestDocumentDeterministic(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dataset := &core.CleanedDataset{
		Domain: core.DomainTrade,
		Trade: []core.TradeRecord{
			{CountryCode: "USA", Date: date, TradeValue: 100, Currency: "USD", CommodityCode: "HS200"},
			{CountryCode: "USA", Date: date, TradeValue: 50, Currency: "USD", CommodityCode: "HS100"},
		},
		Summary: core.DatasetSummary{
			Countries: []string{"USA"},
			DateRange: core.DateRange{From: date, To: date},
			Totals:    map[string]float64{"trade_value": 150},
		},
	}

	first := Document(dataset)
	second := Document(dataset)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "trade data for USA")
	assert.Contains(t, first, "2024-01-15")
	assert.Contains(t, first, "2 records")
	assert.Contains(t, first, "total trade_value 150.00")
	assert.Contains(t, first, "HS100, HS200")
}
