package core

import (
	"fmt"
	"strings"
)

// ValidateChunk checks that a chunk satisfies the domain invariants.
// Content must be non-empty after trimming, the document path must be set,
// and the index must not be negative.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return ErrInvalidChunk
	}
	if strings.TrimSpace(chunk.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if chunk.DocumentPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocumentPath)
	}
	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}
	return nil
}

// ValidateChunkSequence checks that a stitched document's chunks are
// contiguously indexed from 0 with no gaps or duplicates, and that every
// chunk individually validates.
func ValidateChunkSequence(chunks []Chunk) error {
	for i := range chunks {
		if err := ValidateChunk(&chunks[i]); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		if chunks[i].Index != i {
			return fmt.Errorf("%w: position %d has index %d", ErrNonContiguousIndices, i, chunks[i].Index)
		}
	}
	return nil
}
