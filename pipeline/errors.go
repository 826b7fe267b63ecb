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

package pipeline

import "errors"

var (
	// ErrCoordinatorRequired is returned when no ingest coordinator is provided.
	ErrCoordinatorRequired = errors.New("ingest coordinator is required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrVectorStoreRequired is returned when no vector store is provided.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrGraphStoreRequired is returned when no graph store is provided.
	ErrGraphStoreRequired = errors.New("graph store is required")
)
