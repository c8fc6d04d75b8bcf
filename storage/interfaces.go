package storage

import (
	"context"

	"github.com/poiesic/corpusit/core"
)

// ChunkStore persists a document corpus's chunks and serves similarity
// queries over them. Implementations must be thread-safe and support
// concurrent access.
type ChunkStore interface {
	// SaveChunks stores a document's complete chunk sequence in one
	// batch, replacing any chunks previously stored for the same
	// document. Every chunk must carry a vector; the sequence must be
	// contiguous from index 0.
	SaveChunks(ctx context.Context, chunks []core.Chunk) error

	// GetChunks retrieves a document's chunks in index order.
	// Returns an empty slice when the document is not stored.
	GetChunks(ctx context.Context, documentPath string) ([]core.Chunk, error)

	// DeleteDocument removes all chunks stored for a document.
	// Deleting an absent document is not an error.
	DeleteDocument(ctx context.Context, documentPath string) error

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)

	// Documents lists the paths of all stored documents.
	Documents(ctx context.Context) ([]string, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
