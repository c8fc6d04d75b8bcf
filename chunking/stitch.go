package chunking

import (
	"strings"

	"github.com/poiesic/corpusit/core"
)

// Stitch merges per-panel chunk lists into one contiguous sequence.
// The first panel contributes all of its chunks. Every later panel
// first drops the last chunk accumulated so far, because the panel's
// leading overlap regenerates it, then contributes its own chunks.
// The drop happens even when the incoming panel is empty; losing a
// tail chunk beats duplicating one in the corpus. Indices are assigned
// contiguously from 0 over the final sequence.
func Stitch(documentPath string, panelChunks [][]string) []core.Chunk {
	var texts []string
	for i, parts := range panelChunks {
		if i > 0 && len(texts) > 0 {
			texts = texts[:len(texts)-1]
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			texts = append(texts, part)
		}
	}

	chunks := make([]core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{
			Index:        i,
			Content:      text,
			DocumentPath: documentPath,
		}
	}
	return chunks
}
