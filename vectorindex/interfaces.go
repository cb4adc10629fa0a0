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


package vectorindex

import (
	"context"

	"github.com/poiesic/askit/core"
)

// Index stores embedded document chunks and answers nearest neighbor
// queries over them. Implementations must tolerate repeated Upsert of
// the same chunks; chunk identity is positional (core.ChunkID), so a
// re-ingested source replaces its previous points.
type Index interface {
	// Upsert writes chunks into the named collection, overwriting any
	// existing chunks with the same identity.
	Upsert(ctx context.Context, collection string, chunks []core.DocumentChunk) error

	// DeleteBySource removes every chunk belonging to sourceID from the
	// collection. It returns the number of chunks removed, or -1 when the
	// backend cannot report a count.
	DeleteBySource(ctx context.Context, collection, sourceID string) (int, error)

	// Search returns up to k chunks nearest to the query vector, best
	// first. Results written by a completed Upsert are visible to any
	// Search that starts afterwards.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]core.Match, error)

	// Close releases backend resources.
	Close() error
}

// Backend identifiers accepted by Open.
const (
	BackendLocal  = "local"
	BackendQdrant = "qdrant"
)

// Config selects and parameterizes a vector index backend.
type Config struct {
	// Backend is one of BackendLocal or BackendQdrant.
	Backend string

	// Path is the storage directory for the local backend.
	Path string

	// Host and Port locate the Qdrant server for the qdrant backend.
	Host string
	Port int

	// VectorDim is the embedding dimensionality, used when the qdrant
	// backend has to create a missing collection.
	VectorDim int
}

// DefaultConfig returns a local backend configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Backend: BackendLocal,
		Path:    path,
	}
}
