package search

import (
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterVectorSearch(ids []uint64)
	VerbatimHit(entry *core.VectorEntry)
	Finish(results []*storage.VectorMatch)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterEmbedding(_ int)            {}
func (n *noopMonitor) AfterVectorSearch(_ []uint64)    {}
func (n *noopMonitor) VerbatimHit(_ *core.VectorEntry) {}
func (n *noopMonitor) Finish(_ []*storage.VectorMatch) {}
