// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package geoflow

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/geoflow/ai"
	"github.com/poiesic/geoflow/ai/openai"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/ingest"
	"github.com/poiesic/geoflow/pipeline"
	"github.com/poiesic/geoflow/provider"
	"github.com/poiesic/geoflow/provider/comtrade"
	"github.com/poiesic/geoflow/provider/epi"
	"github.com/poiesic/geoflow/provider/worldbank"
	"github.com/poiesic/geoflow/reembed"
	"github.com/poiesic/geoflow/search"
	"github.com/poiesic/geoflow/storage"
	"github.com/poiesic/geoflow/storage/badger"
)

// Service wires the full ingestion stack together: badger-backed vector
// and graph stores, the configured provider connectors, the embedding
// provider, and the processing pipeline. It owns the lifecycle of all of
// them.
type Service struct {
	config      *Config
	backend     *badger.Backend
	vectors     storage.VectorStore
	graph       storage.GraphStore
	provider    ai.AIProvider
	coordinator *ingest.Coordinator
	pipeline    *pipeline.Pipeline
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiProvider ai.AIProvider
	inMemory   bool
	logger     *slog.Logger
}

// WithAIProvider substitutes the embedding provider, primarily for tests.
func WithAIProvider(p ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.aiProvider = p
	}
}

// WithInMemoryStore opens the badger backend in memory instead of on disk.
func WithInMemoryStore() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithServiceLogger sets the logger used by the service and its components.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService builds a Service from the given configuration. A nil config
// means defaults. The configuration is validated before anything is
// opened, so a bad config never leaves partial state behind.
func NewService(cfg *Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.Database.Path, options.inMemory)
	if err != nil {
		return nil, err
	}

	vectors, err := badger.NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, err
	}

	aiProvider := options.aiProvider
	if aiProvider == nil {
		aiProvider, err = openai.NewProvider(cfg.embeddingConfig())
		if err != nil {
			graph.Close()
			vectors.Close()
			backend.Close()
			return nil, err
		}
	}

	connectors, err := buildConnectors(cfg)
	if err != nil {
		aiProvider.Close()
		graph.Close()
		vectors.Close()
		backend.Close()
		return nil, err
	}

	coordinator, err := ingest.NewCoordinator(connectors, ingest.WithLogger(options.logger))
	if err != nil {
		aiProvider.Close()
		graph.Close()
		vectors.Close()
		backend.Close()
		return nil, err
	}

	pipe, err := pipeline.NewPipeline(coordinator, aiProvider.Embedder(), vectors, graph,
		pipeline.WithLogger(options.logger))
	if err != nil {
		coordinator.Release()
		aiProvider.Close()
		graph.Close()
		vectors.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		config:      cfg,
		backend:     backend,
		vectors:     vectors,
		graph:       graph,
		provider:    aiProvider,
		coordinator: coordinator,
		pipeline:    pipe,
		logger:      options.logger,
	}, nil
}

func buildConnectors(cfg *Config) ([]provider.Connector, error) {
	var connectors []provider.Connector

	if pc := cfg.Providers.Comtrade; pc.Enabled {
		c, err := comtrade.New(&comtrade.Config{
			BaseURL:           pc.BaseURL,
			APIKey:            pc.APIKey,
			Timeout:           pc.Timeout.Duration,
			RequestsPerSecond: pc.RequestsPerSecond,
			Burst:             pc.Burst,
		})
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}

	if pc := cfg.Providers.WorldBank; pc.Enabled {
		c, err := worldbank.New(&worldbank.Config{
			BaseURL:           pc.BaseURL,
			APIKey:            pc.APIKey,
			Timeout:           pc.Timeout.Duration,
			RequestsPerSecond: pc.RequestsPerSecond,
			Burst:             pc.Burst,
		})
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}

	if pc := cfg.Providers.EPI; pc.Enabled {
		c, err := epi.New(&epi.Config{
			BaseURL:           pc.BaseURL,
			APIKey:            pc.APIKey,
			Timeout:           pc.Timeout.Duration,
			RequestsPerSecond: pc.RequestsPerSecond,
			Burst:             pc.Burst,
		})
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}

	return connectors, nil
}

// Run processes one batch for the given countries.
func (s *Service) Run(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProcessingReport, error) {
	return s.pipeline.Run(ctx, countries, params)
}

// VectorStore exposes the vector store.
func (s *Service) VectorStore() storage.VectorStore {
	return s.vectors
}

// GraphStore exposes the graph store.
func (s *Service) GraphStore() storage.GraphStore {
	return s.graph
}

// Health probes every configured provider.
func (s *Service) Health(ctx context.Context) []provider.HealthStatus {
	return s.coordinator.Health(ctx)
}

// NewSearcher creates a semantic searcher over the service's vector store.
func (s *Service) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(s.logger)}, opts...)
	return search.NewSearcher(s.vectors, s.provider.Embedder(), opts...)
}

// NewReembedder creates a reembedder over the service's vector store.
// progress receives human-readable progress output.
func (s *Service) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(s.vectors, s.provider.Embedder(), config, progress)
}

// Prune removes data older than the configured retention age from both
// stores. Returns the number of vector entries and graph nodes removed.
// A zero retention age disables pruning.
func (s *Service) Prune(ctx context.Context) (int, int, error) {
	age := s.config.Retention.PruneAge.Duration
	if age <= 0 {
		return 0, 0, nil
	}

	vectorsRemoved, err := s.vectors.PruneOlderThan(ctx, age)
	if err != nil {
		return vectorsRemoved, 0, err
	}

	nodesRemoved, err := s.graph.PruneOlderThan(ctx, age)
	if err != nil {
		return vectorsRemoved, nodesRemoved, err
	}

	s.logger.Info("prune complete",
		"age", age,
		"vectorEntriesRemoved", vectorsRemoved,
		"graphNodesRemoved", nodesRemoved)

	return vectorsRemoved, nodesRemoved, nil
}

// Close releases all resources in dependency order.
func (s *Service) Close() error {
	s.pipeline.Release()
	s.coordinator.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.graph.Close(); err != nil {
		s.logger.Error("error closing graph store", "err", err)
		return err
	}
	if err := s.vectors.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
