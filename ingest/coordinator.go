package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
)

// SourceResult is the outcome of one connector's fetch within a batch:
// either a payload or a connector error, never both.
type SourceResult struct {
	Payload *core.ProviderPayload
	Err     *provider.ConnectorError
}

// RawBatch is the full-join result of one coordinated ingestion run.
// Results is keyed by source name; there is no ordering guarantee between
// sources. A batch is produced even when every connector fails.
type RawBatch struct {
	Countries []string
	StartedAt time.Time
	Elapsed   time.Duration
	Results   map[string]SourceResult
}

// Succeeded returns the source names that produced a payload.
func (b *RawBatch) Succeeded() []string {
	var names []string
	for name, result := range b.Results {
		if result.Err == nil {
			names = append(names, name)
		}
	}
	return names
}

// Failed returns the source names that produced a connector error.
func (b *RawBatch) Failed() []string {
	var names []string
	for name, result := range b.Results {
		if result.Err != nil {
			names = append(names, name)
		}
	}
	return names
}

// Coordinator issues connector fetches concurrently and joins on all of
// them. One connector's failure or slowness never corrupts sibling
// results; it can only delay the batch.
type Coordinator struct {
	connectors   []provider.Connector
	pool         *ants.Pool
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// ErrNoConnectors is returned when a coordinator is built with an empty connector set.
var ErrNoConnectors = errors.New("at least one connector required")

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the worker pool size for concurrent fetches.
// Default is the number of connectors.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithFetchTimeout bounds each individual connector fetch.
// Default is provider.DefaultTimeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) error {
		if timeout > 0 {
			c.fetchTimeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator over the active connector set.
func NewCoordinator(connectors []provider.Connector, opts ...Option) (*Coordinator, error) {
	if len(connectors) == 0 {
		return nil, ErrNoConnectors
	}

	poolSize := len(connectors)
	if poolSize > runtime.NumCPU()*2 {
		poolSize = runtime.NumCPU() * 2
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		connectors:   connectors,
		pool:         pool,
		fetchTimeout: provider.DefaultTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	return c, nil
}

// Ingest fetches from every connector concurrently and waits for all of
// them (full join, no early cancellation on first failure). The returned
// batch maps source name to payload or connector error.
func (c *Coordinator) Ingest(ctx context.Context, countries []string, params provider.FetchParams) *RawBatch {
	batch := &RawBatch{
		Countries: countries,
		StartedAt: time.Now().UTC(),
		Results:   make(map[string]SourceResult, len(c.connectors)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, connector := range c.connectors {
		connector := connector
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
			defer cancel()

			payload, err := connector.Fetch(fetchCtx, countries, params)

			result := SourceResult{Payload: payload}
			if err != nil {
				ce, ok := provider.AsConnectorError(err)
				if !ok {
					// Connectors must not leak untyped errors; capture
					// anything that slips through as a provider failure.
					ce = provider.NewConnectorError(connector.Name(), provider.KindProvider, err)
				}
				result = SourceResult{Err: ce}
				c.logger.Warn("connector fetch failed", "source", connector.Name(), "kind", ce.Kind.String(), "err", ce.Err)
			} else {
				c.logger.Debug("connector fetch succeeded", "source", connector.Name(), "countries", len(payload.Countries))
			}

			mu.Lock()
			batch.Results[connector.Name()] = result
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			batch.Results[connector.Name()] = SourceResult{
				Err: provider.NewConnectorError(connector.Name(), provider.KindProvider, submitErr),
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	batch.Elapsed = time.Since(batch.StartedAt)
	return batch
}

// Health probes every connector's liveness.
func (c *Coordinator) Health(ctx context.Context) []provider.HealthStatus {
	statuses := make([]provider.HealthStatus, len(c.connectors))
	for i, connector := range c.connectors {
		statuses[i] = connector.HealthCheck(ctx)
	}
	return statuses
}

// Release releases the worker pool. The coordinator must not be used afterwards.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}
