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

// Package storage provides the storage abstraction layer for geoflow.
//
// This package defines the two store interfaces that decouple storage
// implementation from the processing pipeline. It allows for different
// storage backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	store, err := badger.NewVectorStore(backend)  // returns storage.VectorStore interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (pgvector, Neo4j, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// Internal package constructors may return concrete types since they're
// only used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern with two repositories:
//
//   - VectorStore: Embedded dataset documents with similarity search
//   - GraphStore: Country relationship graph (nodes, typed edges)
//
// Both BadgerDB implementations share a single Backend but own disjoint
// key ranges, so there is no cross-store locking.
//
// # Usage
//
// Create store instances over one backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := badger.NewVectorStore(backend)
//	graph, err := badger.NewGraphStore(backend)
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	vectors, graph, backend, err := badger.NewMemoryStores()
//	defer backend.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
