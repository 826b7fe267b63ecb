package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/geoflow/ai"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

// defaultMinSimilarity filters out weak semantic matches before boosting.
const defaultMinSimilarity = 0.60

// verbatimBoost is added when every query word appears in the stored document.
const verbatimBoost = 0.3

// Params narrows a search to a domain and country set.
// The zero value searches every domain and country.
type Params struct {
	// Domain restricts results to one record schema. Zero matches all.
	Domain core.Domain

	// Countries restricts results to entries mentioning at least one of
	// the given ISO-3166 alpha-3 codes.
	Countries []string

	// MinSimilarity overrides the default similarity threshold when > 0.
	MinSimilarity float32
}

// Searcher provides semantic search over embedded dataset documents.
type Searcher struct {
	vectors  storage.VectorStore
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(vectors storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		vectors:  vectors,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for dataset documents similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*storage.VectorMatch, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, Params{}, nil)
}

// FindSimilarWithMonitor searches with filtering parameters and monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, params Params, monitor SearchMonitor) ([]*storage.VectorMatch, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	minSimilarity := params.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}

	// Over-fetch so the verbatim boost can promote matches from past the
	// raw similarity cutoff.
	fetchLimit := maxHits * 2
	if fetchLimit < maxHits {
		fetchLimit = maxHits
	}

	filter := storage.SearchFilter{
		Countries:     params.Countries,
		MinSimilarity: minSimilarity,
	}
	matches, err := s.vectors.Search(ctx, params.Domain, embedding, filter, fetchLimit)
	if err != nil {
		s.logger.Error("error querying for similar entries", "err", err)
		return nil, err
	}

	ids := make([]uint64, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, uint64(match.Entry.Id))
	}
	monitor.AfterVectorSearch(ids)

	// Apply verbatim match boost on the stored documents
	for _, match := range matches {
		if containsAllQueryWords(match.Entry.Document, query) {
			match.Score += verbatimBoost
			monitor.VerbatimHit(match.Entry)
		}
	}

	// Sort by score descending
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxHits {
		matches = matches[:maxHits]
	}
	monitor.Finish(matches)

	return matches, nil
}
