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


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/corpusit/core"
	"github.com/poiesic/corpusit/storage"
)

// Store implements storage.ChunkStore on a BadgerDB backend. A
// document's chunks live under composite keys ordered by chunk index,
// with a per-document index key so re-imports replace cleanly.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ChunkStore = (*Store)(nil)

// NewStore creates a chunk store on the given backend.
//
// Returns storage.ChunkStore interface to enforce abstraction.
func NewStore(backend *Backend) (storage.ChunkStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "chunk-store"),
	}, nil
}

// SaveChunks stores a document's complete chunk sequence in one
// transaction, replacing any chunks previously stored for the document.
func (s *Store) SaveChunks(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := core.ValidateChunkSequence(chunks); err != nil {
		return err
	}

	path := chunks[0].DocumentPath
	for i := range chunks {
		if chunks[i].DocumentPath != path {
			return fmt.Errorf("%w: chunk %d belongs to %q", core.ErrInvalidChunk, i, chunks[i].DocumentPath)
		}
		if !chunks[i].HasVector() {
			return fmt.Errorf("%w: chunk %d", storage.ErrMissingVector, i)
		}
	}

	docID := chunks[0].DocumentID()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteDocumentKeys(tx, docID); err != nil {
			return err
		}

		for _, chunk := range chunks {
			if err := tx.Set(makeChunkKey(docID, chunk.Index), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		if err := tx.Set(makeDocumentKey(docID), []byte(path)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("save chunks for %s: %w", path, err)
	}

	s.logger.Debug("saved document chunks", "path", path, "chunks", len(chunks))
	return nil
}

// GetChunks retrieves a document's chunks in index order. Key order is
// index order, so no sort is needed.
func (s *Store) GetChunks(ctx context.Context, documentPath string) ([]core.Chunk, error) {
	docID := core.IDFromContent(documentPath)

	var chunks []core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentChunkPrefix(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("get chunks for %s: %w", documentPath, err)
	}
	return chunks, nil
}

// DeleteDocument removes all chunks stored for a document.
// Deleting an absent document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, documentPath string) error {
	docID := core.IDFromContent(documentPath)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteDocumentKeys(tx, docID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentPath, err)
	}
	return nil
}

// FindSimilar scans all stored chunks and scores them against the
// query vector. Vectors are unit-normalized by the embedding services,
// so the dot product is the cosine similarity.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	if len(vector) == 0 {
		return nil, storage.ErrInvalidVector
	}

	var results []*core.ScoredChunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			if !chunk.HasVector() {
				continue
			}

			similarity := dotProduct(vector, chunk.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.ScoredChunk{
					Chunk: &chunk,
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
	slices.SortFunc(results, func(a, b *core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Documents lists the paths of all stored documents.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				paths = append(paths, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// deleteDocumentKeys removes a document's chunk keys and index key
// within the current transaction.
func deleteDocumentKeys(tx *badger.Txn, docID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeDocumentChunkPrefix(docID)
	opts.PrefetchValues = false

	var keys [][]byte
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return tx.Delete(makeDocumentKey(docID))
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
