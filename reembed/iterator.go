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

package reembed

import (
	"context"
	"time"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

const (
	// DefaultBatchSize is the default number of entries to fetch in each batch
	DefaultBatchSize = 100
)

// EntryIterator iterates over all stored vector entries in batches.
type EntryIterator struct {
	vectors   storage.VectorStore
	batchSize int
}

// NewEntryIterator creates a new entry iterator.
// batchSize: number of entries to process in each batch (must be > 0)
func NewEntryIterator(vectors storage.VectorStore, batchSize int) *EntryIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntryIterator{
		vectors:   vectors,
		batchSize: batchSize,
	}
}

// ForEach iterates over all vector entries, calling fn for each batch.
// Iteration stops on first error from fn or when all entries are processed.
// Context cancellation is checked between batches.
func (it *EntryIterator) ForEach(ctx context.Context, fn func([]*core.VectorEntry) error) error {
	// A very wide date range covers every entry ever written
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := it.vectors.GetByDateRange(ctx, startTime, endTime)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	for i := 0; i < len(entries); i += it.batchSize {
		end := i + it.batchSize
		if end > len(entries) {
			end = len(entries)
		}

		if err := fn(entries[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
