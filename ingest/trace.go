package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/corpusit/core"
)

// Trace records per-document audit lines: panel boundaries, model
// status reports, throttle waits, and fatal errors.
type Trace interface {
	Record(line string)
	Close() error
}

type nopTrace struct{}

func (nopTrace) Record(string) {}
func (nopTrace) Close() error  { return nil }

// NopTrace discards all lines.
func NopTrace() Trace {
	return nopTrace{}
}

// fileTrace appends timestamped lines to one file per document under
// the trace directory, named by the document's content ID.
type fileTrace struct {
	f *os.File
}

// newFileTrace opens (appending) the trace file for a document.
func newFileTrace(dir, documentPath string) (Trace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}

	id := core.IDFromContent(documentPath)
	name := filepath.Join(dir, fmt.Sprintf("%016x.log", uint64(id)))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	t := &fileTrace{f: f}
	t.Record("import " + documentPath)
	return t, nil
}

func (t *fileTrace) Record(line string) {
	fmt.Fprintf(t.f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), line)
}

func (t *fileTrace) Close() error {
	return t.f.Close()
}
