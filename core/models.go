package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a semantically bounded span of document text, the atomic unit
// stored in the corpus and later retrieved by similarity search.
// Chunks are immutable values: attaching an embedding produces a new value.
type Chunk struct {
	Index        int       // Position within the document, contiguous from 0
	Content      string    // Chunk text, never empty or whitespace-only
	DocumentPath string    // Path of the source document
	Vector       []float32 // Embedding vector, nil until the embed stage completes
}

// WithVector returns a copy of the chunk with the embedding attached.
// The original chunk is never mutated; the vector is copied so later
// changes to the input slice cannot leak into the stored value.
func (c Chunk) WithVector(vector []float32) Chunk {
	c.Vector = append([]float32(nil), vector...)
	return c
}

// HasVector reports whether the embed stage has completed for this chunk.
func (c Chunk) HasVector() bool {
	return len(c.Vector) > 0
}

// DocumentID returns the content-hash identifier of the chunk's source document.
func (c Chunk) DocumentID() ID {
	return IDFromContent(c.DocumentPath)
}

// ScoredChunk is a chunk match from vector similarity search.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}
