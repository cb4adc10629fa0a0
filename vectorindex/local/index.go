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


// Package local implements an embedded vector index on BadgerDB.
//
// Chunks are scored by exhaustive cosine similarity (dot product over
// normalized vectors). This scales to tens of thousands of chunks, which
// covers the single node deployments the local backend targets.
package local

import (
	"context"
	"log/slog"
	"slices"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
)

// upsertBatchSize bounds the number of chunks committed per transaction,
// keeping well under badger's transaction size limit.
const upsertBatchSize = 64

// Index is a BadgerDB-backed vector index.
type Index struct {
	backend *badger.Backend
	logger  *slog.Logger
}

// OpenIndex opens a local vector index rooted at path.
// The directory is created if it does not exist.
func OpenIndex(path string) (*Index, error) {
	backend, err := badger.OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newIndex(backend), nil
}

// NewMemoryIndex creates an in-memory index for testing.
func NewMemoryIndex() (*Index, error) {
	backend, err := badger.OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newIndex(backend), nil
}

func newIndex(backend *badger.Backend) *Index {
	return &Index{
		backend: backend,
		logger:  slog.Default().With("component", "local-index"),
	}
}

// Upsert writes chunks into the collection, overwriting chunks with the
// same source and position. Large batches are committed in segments.
func (idx *Index) Upsert(ctx context.Context, collection string, chunks []core.DocumentChunk) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if idx.backend.IsClosed() {
		return ErrIndexClosed
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+upsertBatchSize, len(chunks))
		batch := chunks[start:end]

		err := idx.backend.WithTx(func(tx *badgerdb.Txn) error {
			for i := range batch {
				chunk := &batch[i]
				id := core.ChunkID(chunk.SourceID, chunk.Index)
				if err := tx.Set(makeChunkKey(collection, id), storage.MarshalChunk(chunk)); err != nil {
					return err
				}
				if err := tx.Set(makeSourceKey(collection, chunk.SourceID, id), nil); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}

	idx.logger.Debug("upserted chunks", "collection", collection, "count", len(chunks))
	return nil
}

// DeleteBySource removes every chunk of sourceID from the collection.
// Returns the number of chunks removed.
func (idx *Index) DeleteBySource(ctx context.Context, collection, sourceID string) (int, error) {
	if collection == "" {
		return 0, ErrEmptyCollection
	}
	if idx.backend.IsClosed() {
		return 0, ErrIndexClosed
	}

	// Collect IDs first; deleting while iterating the same prefix is
	// not safe within one transaction.
	var ids []core.ID
	err := idx.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = makeSourcePrefix(collection, sourceID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if id, ok := chunkIDFromSourceKey(iter.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = idx.backend.WithTx(func(tx *badgerdb.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(collection, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeSourceKey(collection, sourceID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	idx.logger.Debug("deleted source", "collection", collection, "source_id", sourceID, "chunks", len(ids))
	return len(ids), nil
}

// Search returns up to k chunks nearest to the query vector, best first.
func (idx *Index) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.Match, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}
	if idx.backend.IsClosed() {
		return nil, ErrIndexClosed
	}
	if k <= 0 {
		return nil, nil
	}

	var matches []core.Match
	err := idx.backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			matches = append(matches, core.Match{
				SourceID: chunk.SourceID,
				Index:    chunk.Index,
				Text:     chunk.Text,
				Score:    dotProduct(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b core.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Close releases the underlying database.
func (idx *Index) Close() error {
	return idx.backend.Close()
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
