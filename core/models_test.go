package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	id1 := IDFromContent("docs/report.pdf")
	id2 := IDFromContent("docs/report.pdf")
	id3 := IDFromContent("docs/other.pdf")

	assert.Equal(t, id1, id2, "same content should produce same ID")
	assert.NotEqual(t, id1, id3, "different content should produce different IDs")
	assert.NotZero(t, id1)
}

func TestChunkWithVector(t *testing.T) {
	original := Chunk{
		Index:        3,
		Content:      "some chunk text",
		DocumentPath: "docs/report.pdf",
	}

	vector := []float32{0.1, 0.2, 0.3}
	embedded := original.WithVector(vector)

	require.True(t, embedded.HasVector())
	assert.Equal(t, vector, embedded.Vector)
	assert.Equal(t, original.Index, embedded.Index)
	assert.Equal(t, original.Content, embedded.Content)
	assert.Equal(t, original.DocumentPath, embedded.DocumentPath)

	// The original value stays untouched.
	assert.False(t, original.HasVector())

	// Mutating the input slice must not leak into the chunk.
	vector[0] = 99.0
	assert.Equal(t, float32(0.1), embedded.Vector[0])
}

func TestChunkDocumentID(t *testing.T) {
	a := Chunk{Content: "x", DocumentPath: "docs/a.txt"}
	b := Chunk{Content: "y", DocumentPath: "docs/a.txt"}
	c := Chunk{Content: "x", DocumentPath: "docs/b.txt"}

	assert.Equal(t, a.DocumentID(), b.DocumentID())
	assert.NotEqual(t, a.DocumentID(), c.DocumentID())
	assert.Equal(t, IDFromContent("docs/a.txt"), a.DocumentID())
}
