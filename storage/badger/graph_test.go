package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

func tradeDataset(code string, values []float64, commodities []string, date time.Time) *core.CleanedDataset {
	var records []core.TradeRecord
	total := 0.0
	for i, v := range values {
		commodity := ""
		if i < len(commodities) {
			commodity = commodities[i]
		}
		records = append(records, core.TradeRecord{
			CountryCode:   code,
			Date:          date,
			TradeValue:    v,
			Currency:      "USD",
			CommodityCode: commodity,
		})
		total += v
	}
	return &core.CleanedDataset{
		Domain: core.DomainTrade,
		Trade:  records,
		Summary: core.DatasetSummary{
			Countries: []string{code},
			DateRange: core.DateRange{From: date, To: date},
			Totals:    map[string]float64{"trade_value": total},
		},
		Cleaning: core.CleaningMetadata{
			OriginalCount: len(records),
			CleanedCount:  len(records),
			PassVersion:   "1.0",
		},
	}
}

func TestUpsertCountryIdempotent(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertCountry(ctx, "usa", "United States"))
	require.NoError(t, graph.UpsertCountry(ctx, "USA", "United States of America"))

	summary, err := graph.Summarize(ctx, "USA")
	require.NoError(t, err)
	assert.Equal(t, "USA", summary.Code)
	assert.Equal(t, "United States of America", summary.Name)
	assert.Empty(t, summary.DataPoints)
}

func TestUpsertCountryRejectsBadCode(t *testing.T) {
	_, graph := newTestStores(t)

	err := graph.UpsertCountry(context.Background(), "U1", "bogus")
	assert.ErrorIs(t, err, core.ErrInvalidCountryCode)
}

func TestMaterializeTrade(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()
	processedAt := time.Now().UTC()

	require.NoError(t, graph.UpsertCountry(ctx, "USA", "United States"))

	dataset := tradeDataset("USA", []float64{100, 250, 50}, []string{"HS100", "HS200", "HS100"}, processedAt.AddDate(0, -1, 0))
	relationships, err := graph.Materialize(ctx, dataset, processedAt)
	require.NoError(t, err)
	// 3 HAS_TRADE_DATA (one per record) + 2 distinct TRADES_IN
	assert.Equal(t, 5, relationships)

	summary, err := graph.Summarize(ctx, "USA")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.DataPoints[core.DomainTrade])
	assert.Equal(t, []string{"HS100", "HS200"}, summary.Commodities)
	assert.Equal(t, processedAt.UnixMicro(), summary.LastProcessedAt.UnixMicro())
}

func TestMaterializeOneNodePerRecord(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()
	processedAt := time.Now().UTC()

	dataset := &core.CleanedDataset{
		Domain: core.DomainEnvironmental,
		Environmental: []core.EnvironmentalRecord{
			{CountryCode: "USA", Date: processedAt.AddDate(0, 0, -3), EPIScore: 51.1},
			{CountryCode: "USA", Date: processedAt.AddDate(0, 0, -2), EPIScore: 52.2},
			{CountryCode: "USA", Date: processedAt.AddDate(0, 0, -1), EPIScore: 53.3},
		},
		Summary: core.DatasetSummary{Countries: []string{"USA"}},
	}

	relationships, err := graph.Materialize(ctx, dataset, processedAt)
	require.NoError(t, err)
	assert.Equal(t, 3, relationships)

	summary, err := graph.Summarize(ctx, "USA")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.DataPoints[core.DomainEnvironmental])

	// Each record lands its own data node carrying that record's metric
	points, err := graph.Trend(ctx, "USA", core.DomainEnvironmental, time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 3)
	values := []float64{points[0].Value, points[1].Value, points[2].Value}
	assert.ElementsMatch(t, []float64{51.1, 52.2, 53.3}, values)
	for _, p := range points {
		assert.Equal(t, 1, p.RecordCount)
	}
}

func TestMaterializeCreatesMissingCountry(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()

	dataset := tradeDataset("DEU", []float64{10}, []string{"HS300"}, time.Now().UTC())
	_, err := graph.Materialize(ctx, dataset, time.Now().UTC())
	require.NoError(t, err)

	summary, err := graph.Summarize(ctx, "DEU")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DataPoints[core.DomainTrade])
}

func TestMaterializeEmptyDataset(t *testing.T) {
	_, graph := newTestStores(t)

	relationships, err := graph.Materialize(context.Background(), &core.CleanedDataset{Domain: core.DomainTrade}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, relationships)
}

func TestSummarizeUnknownCountry(t *testing.T) {
	_, graph := newTestStores(t)

	_, err := graph.Summarize(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrend(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := now.Add(-2 * time.Hour)
	second := now.Add(-1 * time.Hour)

	_, err := graph.Materialize(ctx, tradeDataset("USA", []float64{100}, []string{"HS100"}, first), first)
	require.NoError(t, err)
	_, err = graph.Materialize(ctx, tradeDataset("USA", []float64{300}, []string{"HS100"}, second), second)
	require.NoError(t, err)
	// A different country inside the window must not leak in
	_, err = graph.Materialize(ctx, tradeDataset("FRA", []float64{999}, []string{"HS100"}, second), second)
	require.NoError(t, err)

	points, err := graph.Trend(ctx, "USA", core.DomainTrade, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 100.0, points[0].Value)
	assert.Equal(t, 300.0, points[1].Value)
	assert.True(t, points[0].ProcessedAt.Before(points[1].ProcessedAt))

	t.Run("window excludes older points", func(t *testing.T) {
		points, err := graph.Trend(ctx, "USA", core.DomainTrade, 90*time.Minute)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 300.0, points[0].Value)
	})
}

func TestPruneOlderThanSparesCountriesAndCommodities(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := now.Add(-48 * time.Hour)
	require.NoError(t, graph.UpsertCountry(ctx, "USA", "United States"))
	_, err := graph.Materialize(ctx, tradeDataset("USA", []float64{100}, []string{"HS100"}, stale), stale)
	require.NoError(t, err)
	_, err = graph.Materialize(ctx, tradeDataset("USA", []float64{200}, []string{"HS100"}, now), now)
	require.NoError(t, err)

	removed, err := graph.PruneOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Country survives with the fresh data point and its commodities intact
	summary, err := graph.Summarize(ctx, "USA")
	require.NoError(t, err)
	assert.Equal(t, "United States", summary.Name)
	assert.Equal(t, 1, summary.DataPoints[core.DomainTrade])
	assert.Equal(t, []string{"HS100"}, summary.Commodities)

	// Dangling edges are gone: the pruned point no longer appears in trends
	points, err := graph.Trend(ctx, "USA", core.DomainTrade, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 200.0, points[0].Value)
}

func TestLinkCorrelated(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()

	t.Run("missing countries", func(t *testing.T) {
		err := graph.LinkCorrelated(ctx, "USA", "FRA", 0.82, 0.01)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("links existing countries", func(t *testing.T) {
		require.NoError(t, graph.UpsertCountry(ctx, "USA", "United States"))
		require.NoError(t, graph.UpsertCountry(ctx, "FRA", "France"))

		require.NoError(t, graph.LinkCorrelated(ctx, "USA", "FRA", 0.82, 0.01))
		// Relinking the same pair updates in place
		require.NoError(t, graph.LinkCorrelated(ctx, "USA", "FRA", 0.91, 0.005))
	})
}

func TestGraphStoreHonorsCancelledContext(t *testing.T) {
	_, graph := newTestStores(t)
	ctx := context.Background()
	stale := time.Now().UTC().Add(-48 * time.Hour)

	_, err := graph.Materialize(ctx, tradeDataset("USA", []float64{100}, []string{"HS100"}, stale), stale)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = graph.Materialize(cancelled, tradeDataset("USA", []float64{200}, []string{"HS100"}, stale), stale)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = graph.Summarize(cancelled, "USA")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = graph.Trend(cancelled, "USA", core.DomainTrade, 72*time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = graph.PruneOlderThan(cancelled, 24*time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
