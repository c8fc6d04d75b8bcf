package ingest

import (
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Pipeline stage names as they appear in progress events and UIs.
const (
	StageStart     = "Start"
	StageExtract   = "Extract"
	StageChunk     = "Chunk"
	StageThrottle  = "429 wait"
	StageEmbedSave = "Embed+Save"
	StageDone      = "Done"
	StageError     = "Error"
)

// Progress is one pipeline progress event. Current and Total position
// the document within its batch, counting from 1.
type Progress struct {
	Current  int
	Total    int
	FileName string
	Stage    string

	// Info carries stage detail: chunk counts, throttle countdowns,
	// error text.
	Info string

	// StageElapsed is how long the completed stage took; zero for
	// stage-entry events.
	StageElapsed time.Duration
}

// Reporter receives pipeline progress events.
type Reporter interface {
	Report(p Progress)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(p Progress)

func (f ReporterFunc) Report(p Progress) {
	f(p)
}

// NopReporter discards all events.
func NopReporter() Reporter {
	return ReporterFunc(func(Progress) {})
}

// AsyncReporter delivers events to a wrapped reporter on a single
// worker goroutine, so a slow renderer never stalls the pipeline.
// Single worker keeps delivery ordered.
type AsyncReporter struct {
	inner  Reporter
	pool   *ants.Pool
	logger *slog.Logger
}

// NewAsyncReporter wraps a reporter with asynchronous ordered delivery.
func NewAsyncReporter(inner Reporter) (*AsyncReporter, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}
	return &AsyncReporter{
		inner:  inner,
		pool:   pool,
		logger: slog.Default().With("component", "progress"),
	}, nil
}

// Report submits the event for delivery. Events are dropped, with a
// log line, only if the pool has been released.
func (r *AsyncReporter) Report(p Progress) {
	err := r.pool.Submit(func() {
		r.inner.Report(p)
	})
	if err != nil {
		r.logger.Debug("progress event dropped", "stage", p.Stage, "err", err)
	}
}

// Release waits for queued events to drain and stops the worker.
// The reporter should not be used after calling Release.
func (r *AsyncReporter) Release() {
	for r.pool.Running() > 0 || r.pool.Waiting() > 0 {
		time.Sleep(time.Millisecond)
	}
	r.pool.Release()
}
