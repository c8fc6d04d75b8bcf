package storage

import (
	"testing"

	"github.com/poiesic/corpusit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSerializationRoundTrip(t *testing.T) {
	chunk := core.Chunk{
		Index:        3,
		Content:      "The retry orchestrator prefers server hints over fallback delays.",
		DocumentPath: "docs/retry.md",
		Vector:       []float32{0.1, -0.5, 0.25, 1.0},
	}

	bs := MarshalChunk(chunk)
	decoded, err := UnmarshalChunk(bs)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestUnmarshalChunkCorruptData(t *testing.T) {
	chunk := core.Chunk{Index: 0, Content: "text", DocumentPath: "a.md"}
	bs := MarshalChunk(chunk)

	_, err := UnmarshalChunk(bs[:len(bs)-2])
	assert.Error(t, err)
}
