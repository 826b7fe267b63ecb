package storage

import (
	"context"
	"time"

	"github.com/poiesic/geoflow/core"
)

// SearchFilter narrows vector search results by metadata.
// A zero-value filter matches every entry.
type SearchFilter struct {
	// Countries restricts results to entries whose metadata mentions at
	// least one of the given ISO-3166 alpha-3 codes. Empty means no
	// country restriction.
	Countries []string

	// MinSimilarity is the minimum cosine similarity for a match.
	MinSimilarity float32
}

// VectorMatch is one vector search result with its similarity score.
type VectorMatch struct {
	Entry *core.VectorEntry
	Score float32
}

// VectorStore persists embedded dataset documents and supports similarity
// search over them. Implementations must be thread-safe.
type VectorStore interface {
	// Store writes a vector entry. If the entry's Id is zero it is
	// computed deterministically from domain, document, and processing
	// timestamp, so rewriting the same batch lands on the same key.
	// Returns the entry's ID.
	Store(ctx context.Context, entry *core.VectorEntry) (core.ID, error)

	// Update rewrites an existing vector entry in place.
	// Returns ErrNotFound if the entry doesn't exist.
	Update(ctx context.Context, entry *core.VectorEntry) error

	// Get retrieves a single vector entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.VectorEntry, error)

	// GetByDateRange retrieves entries whose processing timestamp falls
	// within [start, end), ordered by timestamp ascending.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*core.VectorEntry, error)

	// Search finds entries similar to the given vector, ordered by
	// similarity descending, up to limit results. A zero domain matches
	// all domains.
	Search(ctx context.Context, domain core.Domain, vector []float32, filter SearchFilter, limit int) ([]*VectorMatch, error)

	// Stats returns the number of stored entries per domain.
	Stats(ctx context.Context) (map[core.Domain]int, error)

	// PruneOlderThan removes entries whose processing timestamp is older
	// than the given age. Returns the number of entries removed.
	PruneOlderThan(ctx context.Context, age time.Duration) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// CountrySummary aggregates what the graph knows about one country.
type CountrySummary struct {
	Code            string
	Name            string
	DataPoints      map[core.Domain]int
	Commodities     []string // distinct, sorted commodity codes
	LastProcessedAt time.Time
}

// TrendPoint is one time-ordered observation of a domain's primary metric.
type TrendPoint struct {
	ProcessedAt time.Time
	Value       float64
	RecordCount int
}

// GraphStore persists the country relationship graph. Implementations
// must be thread-safe.
type GraphStore interface {
	// UpsertCountry creates or refreshes a Country node. Upserts are
	// idempotent: re-upserting refreshes Name and UpdatedAt, never
	// duplicates the node.
	UpsertCountry(ctx context.Context, code, name string) error

	// Materialize writes the dataset into the graph: one data node per
	// cleaned record, each linked from its Country node by a directed
	// domain-typed edge, plus Commodity nodes and TRADES_IN edges for
	// trade records. processedAt stamps every node and edge written.
	// Returns the number of relationships created.
	Materialize(ctx context.Context, dataset *core.CleanedDataset, processedAt time.Time) (int, error)

	// LinkCorrelated records a CORRELATES_WITH edge between two Country
	// nodes with the given correlation coefficient and p-value. The edge
	// is keyed by the country pair, so relinking updates in place.
	// Returns ErrNotFound if either country is missing.
	LinkCorrelated(ctx context.Context, codeA, codeB string, coefficient, pValue float64) error

	// Summarize reports per-domain data point counts, distinct traded
	// commodities, and the most recent processing timestamp for a country.
	// Returns ErrNotFound if the country doesn't exist.
	Summarize(ctx context.Context, code string) (*CountrySummary, error)

	// Trend returns the time-ordered primary-metric observations for a
	// country and domain within the trailing window.
	Trend(ctx context.Context, code string, domain core.Domain, window time.Duration) ([]TrendPoint, error)

	// PruneOlderThan removes data nodes older than the given age along
	// with their edges, atomically per node. Country and Commodity nodes
	// are always retained. Returns the number of nodes removed.
	PruneOlderThan(ctx context.Context, age time.Duration) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
