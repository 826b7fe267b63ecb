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

package storage

import (
	"fmt"

	"github.com/poiesic/geoflow/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalVectorEntry serializes a VectorEntry to bytes.
func MarshalVectorEntry(entry *core.VectorEntry) []byte {
	buf := make([]byte, core.VectorEntryMUS.Size(*entry))
	core.VectorEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalVectorEntry deserializes a VectorEntry from bytes.
func UnmarshalVectorEntry(data []byte) (*core.VectorEntry, error) {
	entry, _, err := core.VectorEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: entry: %v", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalGraphNode serializes a GraphNode to bytes.
func MarshalGraphNode(node *core.GraphNode) []byte {
	buf := make([]byte, core.GraphNodeMUS.Size(*node))
	core.GraphNodeMUS.Marshal(*node, buf)
	return buf
}

// UnmarshalGraphNode deserializes a GraphNode from bytes.
func UnmarshalGraphNode(data []byte) (*core.GraphNode, error) {
	node, _, err := core.GraphNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: node: %v", ErrSerializationFailed, err)
	}
	return &node, nil
}

// MarshalGraphEdge serializes a GraphEdge to bytes.
func MarshalGraphEdge(edge *core.GraphEdge) []byte {
	buf := make([]byte, core.GraphEdgeMUS.Size(*edge))
	core.GraphEdgeMUS.Marshal(*edge, buf)
	return buf
}

// UnmarshalGraphEdge deserializes a GraphEdge from bytes.
func UnmarshalGraphEdge(data []byte) (*core.GraphEdge, error) {
	edge, _, err := core.GraphEdgeMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: edge: %v", ErrSerializationFailed, err)
	}
	return &edge, nil
}
