package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/geoflow/ai"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/ingest"
	"github.com/poiesic/geoflow/provider"
	"github.com/poiesic/geoflow/quality"
	"github.com/poiesic/geoflow/storage"
)

const defaultStoreTimeout = 30 * time.Second

// Pipeline orchestrates one processing run: coordinated ingestion,
// per-domain validation and cleaning, embedding, and concurrent writes to
// the vector and graph stores.
type Pipeline struct {
	coordinator  *ingest.Coordinator
	embedder     ai.Embedder
	vectors      storage.VectorStore
	graph        storage.GraphStore
	storePool    *ants.Pool
	storeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent store writes.
// Default is 2, one worker per store.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.storePool != nil {
			p.storePool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.storePool = pool
		return nil
	}
}

// WithStoreTimeout bounds each individual store write.
// Default is 30 seconds.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.storeTimeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a processing pipeline over its explicit dependencies.
// Configuration errors here are the only fatal errors in the pipeline's
// lifecycle; a running pipeline reports failures through the report.
func NewPipeline(
	coordinator *ingest.Coordinator,
	embedder ai.Embedder,
	vectors storage.VectorStore,
	graph storage.GraphStore,
	opts ...Option,
) (*Pipeline, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}

	pool, err := ants.NewPool(2)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		coordinator:  coordinator,
		embedder:     embedder,
		vectors:      vectors,
		graph:        graph,
		storePool:    pool,
		storeTimeout: defaultStoreTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run executes one batch: fetch all sources, then validate, clean, embed,
// and store each domain. The report is always populated with per-source
// and per-domain outcomes, even when every stage fails. The only error
// return is context cancellation between stages.
func (p *Pipeline) Run(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProcessingReport, error) {
	normalized := make([]string, len(countries))
	for i, c := range countries {
		normalized[i] = core.NormalizeCountryCode(c)
	}

	report := &core.ProcessingReport{
		BatchID: uuid.NewString(),
		// Floored to the precision timestamps survive serialization at,
		// so stored entries read back equal to the report's timestamp.
		ProcessedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Countries:    normalized,
		SourceErrors: make(map[string]string),
		Domains:      make(map[core.Domain]*core.DomainReport),
	}

	p.logger.Info("starting pipeline run", "batch_id", report.BatchID, "countries", normalized)

	batch := p.coordinator.Ingest(ctx, normalized, params)
	for _, source := range batch.Failed() {
		report.SourceErrors[source] = batch.Results[source].Err.Error()
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	for source, result := range batch.Results {
		if result.Err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p.processPayload(ctx, report, source, result.Payload)
	}

	p.logger.Info("pipeline run finished",
		"batch_id", report.BatchID,
		"sources_failed", len(report.SourceErrors),
		"domains", len(report.Domains),
		"elapsed", batch.Elapsed)

	return report, nil
}

// processPayload validates, cleans, embeds, and stores one source payload.
func (p *Pipeline) processPayload(ctx context.Context, report *core.ProcessingReport, source string, payload *core.ProviderPayload) {
	logger := p.logger.With("batch_id", report.BatchID, "source", source, "domain", payload.Domain.String())

	verdict := quality.Validate(payload)
	domainReport := &core.DomainReport{
		Source:  source,
		Verdict: verdict,
	}
	report.Domains[payload.Domain] = domainReport

	// Cleaning runs regardless of the verdict so the report carries
	// cleaned counts even for unusable batches.
	dataset, err := quality.Clean(payload)
	if err != nil {
		logger.Error("cleaning failed", "err", err)
		return
	}
	domainReport.CleanedRecordCount = dataset.RecordCount()

	if !verdict.IsValid {
		logger.Warn("skipping storage for invalid batch",
			"quality", verdict.Quality.String(),
			"issues", len(verdict.Issues))
		return
	}
	if dataset.RecordCount() == 0 {
		logger.Warn("no records survived cleaning, skipping storage")
		return
	}

	document := Document(dataset)
	vector, embedErr := p.embedder.EmbedText(ctx, document)
	if embedErr != nil {
		logger.Error("embedding failed", "err", embedErr)
		domainReport.VectorError = embedErr.Error()
	}

	// Both stores receive the same processing timestamp so entries from
	// one run line up across stores.
	processedAt := report.ProcessedAt

	names := countryNames(payload)

	var wg sync.WaitGroup

	if embedErr == nil {
		entry := &core.VectorEntry{
			Domain:   dataset.Domain,
			Vector:   vector,
			Document: document,
			Metadata: core.VectorMetadata{
				Countries:   dataset.Summary.Countries,
				DateFrom:    dataset.Summary.DateRange.From,
				DateTo:      dataset.Summary.DateRange.To,
				RecordCount: dataset.RecordCount(),
				ProcessedAt: processedAt,
			},
		}
		wg.Add(1)
		if submitErr := p.storePool.Submit(func() {
			defer wg.Done()

			// Writes run to completion even if the run is cancelled;
			// cancellation is honored between stages only.
			writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.storeTimeout)
			defer cancel()

			id, err := p.vectors.Store(writeCtx, entry)
			if err != nil {
				logger.Error("vector store write failed", "err", err)
				domainReport.VectorError = err.Error()
				return
			}
			domainReport.EmbeddingID = id
		}); submitErr != nil {
			wg.Done()
			domainReport.VectorError = submitErr.Error()
		}
	}

	wg.Add(1)
	if submitErr := p.storePool.Submit(func() {
		defer wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.storeTimeout)
		defer cancel()

		for _, code := range dataset.Summary.Countries {
			if err := p.graph.UpsertCountry(writeCtx, code, names[code]); err != nil {
				logger.Error("country upsert failed", "country", code, "err", err)
				domainReport.GraphError = err.Error()
				return
			}
		}

		relationships, err := p.graph.Materialize(writeCtx, dataset, processedAt)
		if err != nil {
			logger.Error("graph store write failed", "err", err)
			domainReport.GraphError = err.Error()
			return
		}
		domainReport.GraphRelationships = relationships
	}); submitErr != nil {
		wg.Done()
		domainReport.GraphError = submitErr.Error()
	}

	wg.Wait()
}

// countryNames maps normalized country codes to display names from the payload.
func countryNames(payload *core.ProviderPayload) map[string]string {
	names := make(map[string]string, len(payload.Countries))
	for _, c := range payload.Countries {
		code := core.NormalizeCountryCode(c.Code)
		if c.Name != "" {
			names[code] = c.Name
		}
	}
	return names
}

// Release releases the store worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.storePool != nil {
		p.storePool.Release()
	}
}
