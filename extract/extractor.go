// Package extract turns document files into plain text for chunking.
// Plain text and markdown are read directly; PDF text is pulled from
// the page content streams.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor dispatches on file extension to a format-specific reader.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supported reports whether the file's extension has a registered
// reader.
func Supported(path string) bool {
	switch normalizedExt(path) {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	}
	return false
}

// ExtractText reads a document file and returns its plain text with
// normalized whitespace.
func (e *Extractor) ExtractText(path string) (string, error) {
	switch ext := normalizedExt(path); ext {
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return scrub(string(data)), nil
	case ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			return "", fmt.Errorf("extract pdf %s: %w", path, err)
		}
		return scrub(text), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// scrub normalizes line endings, strips control characters that upset
// tokenizers, and collapses runs of blank lines.
func scrub(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	blankRun := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if r == '\t' {
				return ' '
			}
			if r < 0x20 || r == 0x7f || r == '�' {
				return -1
			}
			return r
		}, line)

		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			line = ""
		} else {
			blankRun = 0
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRight(line, " "))
	}
	return strings.TrimSpace(b.String())
}
