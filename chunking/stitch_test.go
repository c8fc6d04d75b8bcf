package chunking

import (
	"testing"

	"github.com/poiesic/corpusit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStitchSinglePanel(t *testing.T) {
	chunks := Stitch("doc.md", [][]string{{"alpha", "beta", "gamma"}})

	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "doc.md", chunk.DocumentPath)
		assert.Nil(t, chunk.Vector)
	}
	assert.Equal(t, "alpha", chunks[0].Content)
	assert.Equal(t, "gamma", chunks[2].Content)
}

func TestStitchDropsOverlapDuplicate(t *testing.T) {
	// The second panel's first chunk regenerates the first panel's last
	// chunk from the overlap region, so the accumulated tail is dropped.
	chunks := Stitch("doc.md", [][]string{
		{"alpha", "beta"},
		{"beta'", "gamma"},
	})

	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha", chunks[0].Content)
	assert.Equal(t, "beta'", chunks[1].Content)
	assert.Equal(t, "gamma", chunks[2].Content)
}

func TestStitchThreePanelsContiguousIndices(t *testing.T) {
	chunks := Stitch("doc.md", [][]string{
		{"a", "b"},
		{"b2", "c"},
		{"c2", "d"},
	})

	require.Len(t, chunks, 4)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
	assert.Equal(t, []string{"a", "b2", "c2", "d"}, contents(chunks))
}

func TestStitchDropHappensEvenWhenPanelEmpty(t *testing.T) {
	// An empty later panel still consumes the accumulated tail chunk.
	chunks := Stitch("doc.md", [][]string{
		{"a", "b"},
		{},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "a", chunks[0].Content)
}

func TestStitchSkipsWhitespaceOnlyParts(t *testing.T) {
	chunks := Stitch("doc.md", [][]string{{"a", "   ", "b", "\n\t"}})

	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"a", "b"}, contents(chunks))
}

func TestStitchEmptyInput(t *testing.T) {
	assert.Empty(t, Stitch("doc.md", nil))
	assert.Empty(t, Stitch("doc.md", [][]string{{}, {}}))
}

func contents(chunks []core.Chunk) []string {
	out := make([]string, len(chunks))
	for i, chunk := range chunks {
		out[i] = chunk.Content
	}
	return out
}
