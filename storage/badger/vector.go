package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore over the given backend.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(backend *Backend) (storage.VectorStore, error) {
	return &VectorStore{backend: backend}, nil
}

// Store writes a vector entry, computing its deterministic ID when unset.
func (s *VectorStore) Store(ctx context.Context, entry *core.VectorEntry) (core.ID, error) {
	if entry.Id == 0 {
		entry.Id = core.VectorEntryID(entry.Domain, entry.Document, entry.Metadata.ProcessedAt)
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorEntryKey(entry.Id)
		if err := tx.Set(key, storage.MarshalVectorEntry(entry)); err != nil {
			return err
		}

		// Update processing-timestamp index
		dateKey := makeVectorDateKey(entry.Metadata.ProcessedAt, entry.Id)
		if err := tx.Set(dateKey, storage.MarshalID(entry.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return entry.Id, err
}

// Update rewrites an existing vector entry in place.
func (s *VectorStore) Update(ctx context.Context, entry *core.VectorEntry) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorEntryKey(entry.Id)

		// Read old entry to detect timestamp changes
		old, err := s.readEntry(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if err := tx.Set(key, storage.MarshalVectorEntry(entry)); err != nil {
			return err
		}

		// Update date index if the processing timestamp changed
		if !old.Metadata.ProcessedAt.Equal(entry.Metadata.ProcessedAt) {
			oldDateKey := makeVectorDateKey(old.Metadata.ProcessedAt, old.Id)
			if err := tx.Delete(oldDateKey); err != nil {
				return err
			}
			newDateKey := makeVectorDateKey(entry.Metadata.ProcessedAt, entry.Id)
			if err := tx.Set(newDateKey, storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single vector entry by ID.
func (s *VectorStore) Get(ctx context.Context, id core.ID) (*core.VectorEntry, error) {
	var result *core.VectorEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorEntryKey(id)
		var err error
		result, err = s.readEntry(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetByDateRange retrieves entries processed within [start, end), ordered
// by processing timestamp ascending.
func (s *VectorStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*core.VectorEntry, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.VectorEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialVectorDateKey(start)
		endKey := makePartialVectorDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var entryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full entry
			entry, err := s.readEntry(tx, makeVectorEntryKey(entryID))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)

	return results, err
}

// Search finds entries similar to the given vector, ordered by similarity
// descending, up to limit results.
func (s *VectorStore) Search(ctx context.Context, domain core.Domain, vector []float32, filter storage.SearchFilter, limit int) ([]*storage.VectorMatch, error) {
	var results []*storage.VectorMatch

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()

			var entry *core.VectorEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			if domain != 0 && entry.Domain != domain {
				continue
			}
			if !matchesCountries(entry, filter.Countries) {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			similarity := dotProduct(vector, entry.Vector)
			if similarity >= filter.MinSimilarity {
				results = append(results, &storage.VectorMatch{
					Entry: entry,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *storage.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Stats returns the number of stored entries per domain.
func (s *VectorStore) Stats(ctx context.Context) (map[core.Domain]int, error) {
	stats := make(map[core.Domain]int)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()

			var entry *core.VectorEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry != nil {
				stats[entry.Domain]++
			}
		}
		return nil
	}, false)

	return stats, err
}

// PruneOlderThan removes entries processed before now-age.
func (s *VectorStore) PruneOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)

	// Collect victims in a read pass first: deleting while iterating the
	// same index is not safe within one badger transaction.
	type victim struct {
		id          core.ID
		processedAt time.Time
	}
	var victims []victim

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		endKey := makePartialVectorDateKey(cutoff)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		startKey := makePartialVectorDateKey(time.Unix(0, 0))
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, []byte(vectorDatePrefix+":")) {
				break
			}
			if slices.Compare(key, endKey) >= 0 {
				break
			}

			var entryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			entry, err := s.readEntry(tx, makeVectorEntryKey(entryID))
			if err != nil {
				return err
			}
			if entry != nil {
				victims = append(victims, victim{id: entry.Id, processedAt: entry.Metadata.ProcessedAt})
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	if len(victims) == 0 {
		return 0, nil
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, v := range victims {
			if err := tx.Delete(makeVectorEntryKey(v.id)); err != nil {
				return err
			}
			if err := tx.Delete(makeVectorDateKey(v.processedAt, v.id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(victims), nil
}

// Close is a no-op: the shared backend owns the database lifecycle.
func (s *VectorStore) Close() error {
	return nil
}

// readEntry reads a vector entry from the transaction.
// Returns nil without error when the key is absent.
func (s *VectorStore) readEntry(tx *badger.Txn, key []byte) (*core.VectorEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.VectorEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalVectorEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// matchesCountries reports whether the entry's metadata mentions at least
// one of the wanted country codes. An empty filter matches everything.
func matchesCountries(entry *core.VectorEntry, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if slices.Contains(entry.Metadata.Countries, w) {
			return true
		}
	}
	return false
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
