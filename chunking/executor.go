package chunking

import (
	"fmt"
	"strings"
)

// Delimiter is the machine separator the model is told to emit between
// chunks. Chosen to be vanishingly unlikely in natural document text.
const Delimiter = "<<<CHUNK>>>"

// statusMarker prefixes model self-report lines ("processing section
// 3 of 7"). Marked lines are routed to the audit trace and stripped
// from both the chunk content and the user-facing stream preview.
const statusMarker = "%%STATUS%%"

// buildPrompt composes the chunking directive for one panel. Panels
// after the first are told their leading tokens repeat the previous
// panel so the model does not open a fresh chunk inside the overlap.
func buildPrompt(panelText string, index, count, overlapTokens, chunkMin, chunkMax int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are segmenting a document for a retrieval system. This is window %d of %d.\n\n", index+1, count)
	fmt.Fprintf(&b, "Split the text below into self-contained chunks of roughly %d to %d tokens each. ", chunkMin, chunkMax)
	b.WriteString("Each chunk must stand alone: keep a heading with the section it titles, never split mid-sentence.\n")
	fmt.Fprintf(&b, "Output every chunk's text verbatim, separated by a line containing exactly %s and nothing else. ", Delimiter)
	b.WriteString("Do not add commentary, numbering, or summaries.\n")
	fmt.Fprintf(&b, "If you need to report progress, put it on its own line starting with %s and it will be discarded.\n", statusMarker)

	if index > 0 {
		fmt.Fprintf(&b, "\nThe first ~%d tokens of this window repeat the end of the previous window. ", overlapTokens)
		b.WriteString("Do not start a new chunk inside that repeated region; fold it into the first chunk so the windows join cleanly.\n")
	}

	b.WriteString("\n--- DOCUMENT TEXT ---\n")
	b.WriteString(panelText)
	return b.String()
}

// ParseChunks splits a model response into chunk texts. Parts are
// trimmed and empties dropped; a response with no delimiter at all is
// one chunk, never an error. Status-marker lines are removed from chunk
// content.
func ParseChunks(response string) []string {
	var chunks []string
	for _, part := range strings.Split(response, Delimiter) {
		part = strings.TrimSpace(stripStatusLines(part))
		if part == "" {
			continue
		}
		chunks = append(chunks, part)
	}
	return chunks
}

// StatusLines extracts the model's status-marker lines from a response,
// marker stripped, for the audit trace.
func StatusLines(response string) []string {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, statusMarker); ok {
			lines = append(lines, strings.TrimSpace(rest))
		}
	}
	return lines
}

func stripStatusLines(text string) string {
	if !strings.Contains(text, statusMarker) {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), statusMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
