package storage

import (
	"fmt"

	"github.com/poiesic/corpusit/core"
)

// MarshalChunk serializes a chunk to its MUS byte representation.
func MarshalChunk(chunk core.Chunk) []byte {
	bs := make([]byte, core.ChunkMUS.Size(chunk))
	core.ChunkMUS.Marshal(chunk, bs)
	return bs
}

// UnmarshalChunk deserializes a chunk from its MUS byte representation.
func UnmarshalChunk(bs []byte) (core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(bs)
	if err != nil {
		return core.Chunk{}, fmt.Errorf("unmarshal chunk: %w", err)
	}
	return chunk, nil
}
