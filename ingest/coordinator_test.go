package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
	"github.com/poiesic/geoflow/provider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConnectors() []provider.Connector {
	return []provider.Connector{
		mock.NewConnector("trade-src", core.DomainTrade),
		mock.NewConnector("macro-src", core.DomainMacroeconomic),
		mock.NewConnector("env-src", core.DomainEnvironmental),
	}
}

func TestNewCoordinatorRequiresConnectors(t *testing.T) {
	_, err := NewCoordinator(nil)
	require.ErrorIs(t, err, ErrNoConnectors)
}

func TestIngestAllSucceed(t *testing.T) {
	coordinator, err := NewCoordinator(testConnectors())
	require.NoError(t, err)
	defer coordinator.Release()

	batch := coordinator.Ingest(context.Background(), []string{"CHN", "USA"}, provider.FetchParams{})
	require.NotNil(t, batch)
	require.Len(t, batch.Results, 3)

	for name, result := range batch.Results {
		require.Nil(t, result.Err, "source %s should not have failed", name)
		require.NotNil(t, result.Payload)
		assert.Equal(t, name, result.Payload.Source)
		assert.Len(t, result.Payload.Countries, 2)
	}
	assert.Len(t, batch.Succeeded(), 3)
	assert.Empty(t, batch.Failed())
}

func TestIngestFailureIsolation(t *testing.T) {
	connectors := testConnectors()
	env := connectors[2].(*mock.Connector)
	env.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
		return nil, provider.NewConnectorError("env-src", provider.KindProvider, errors.New("upstream down"))
	}

	coordinator, err := NewCoordinator(connectors)
	require.NoError(t, err)
	defer coordinator.Release()

	batch := coordinator.Ingest(context.Background(), []string{"CHN"}, provider.FetchParams{})
	require.Len(t, batch.Results, 3)

	require.NotNil(t, batch.Results["env-src"].Err)
	assert.Equal(t, provider.KindProvider, batch.Results["env-src"].Err.Kind)

	// The failing connector must not affect its siblings.
	require.NotNil(t, batch.Results["trade-src"].Payload)
	require.NotNil(t, batch.Results["macro-src"].Payload)
	assert.ElementsMatch(t, []string{"env-src"}, batch.Failed())
	assert.ElementsMatch(t, []string{"trade-src", "macro-src"}, batch.Succeeded())
}

func TestIngestAllFail(t *testing.T) {
	connectors := testConnectors()
	for _, c := range connectors {
		c := c.(*mock.Connector)
		name := c.SourceName
		c.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
			return nil, provider.NewConnectorError(name, provider.KindTimeout, context.DeadlineExceeded)
		}
	}

	coordinator, err := NewCoordinator(connectors)
	require.NoError(t, err)
	defer coordinator.Release()

	// A batch is returned even when every connector fails.
	batch := coordinator.Ingest(context.Background(), []string{"CHN"}, provider.FetchParams{})
	require.NotNil(t, batch)
	require.Len(t, batch.Results, 3)
	assert.Len(t, batch.Failed(), 3)
	assert.Empty(t, batch.Succeeded())
}

func TestIngestWrapsUntypedErrors(t *testing.T) {
	connectors := testConnectors()[:1]
	c := connectors[0].(*mock.Connector)
	c.FetchFunc = func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
		return nil, errors.New("bare error")
	}

	coordinator, err := NewCoordinator(connectors)
	require.NoError(t, err)
	defer coordinator.Release()

	batch := coordinator.Ingest(context.Background(), []string{"CHN"}, provider.FetchParams{})
	result := batch.Results["trade-src"]
	require.NotNil(t, result.Err)
	assert.Equal(t, "trade-src", result.Err.Source)
	assert.Equal(t, provider.KindProvider, result.Err.Kind)
}

func TestHealth(t *testing.T) {
	coordinator, err := NewCoordinator(testConnectors())
	require.NoError(t, err)
	defer coordinator.Release()

	statuses := coordinator.Health(context.Background())
	require.Len(t, statuses, 3)
	for _, status := range statuses {
		assert.Equal(t, provider.StatusOK, status.Status)
		assert.False(t, status.Timestamp.IsZero())
	}
}
