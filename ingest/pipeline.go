// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/corpusit/ai"
	"github.com/poiesic/corpusit/chunking"
	"github.com/poiesic/corpusit/core"
	"github.com/poiesic/corpusit/ratelimit"
	"github.com/poiesic/corpusit/retry"
	"github.com/poiesic/corpusit/storage"
	"github.com/poiesic/corpusit/tokenizer"
)

// Extractor turns a document file into plain text.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// Chunker turns document text into an ordered chunk sequence.
// Implemented by chunking.Service.
type Chunker interface {
	ChunkDocument(ctx context.Context, documentPath, text string, cb chunking.Callbacks) ([]core.Chunk, error)
}

// Pipeline drives documents through extract, chunk, embed, and save,
// reporting progress per stage. Documents are processed strictly one
// at a time; a batch aborts on the first fatal error with earlier
// documents already persisted.
type Pipeline struct {
	store      storage.ChunkStore
	extractor  Extractor
	chunker    Chunker
	embedder   ai.Embedder
	reporter   Reporter
	limiter    *ratelimit.Limiter
	retryCfg   retry.Config
	embedDelay time.Duration
	traceDir   string
	stream     ai.StreamFunc
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets the progress event sink.
// Default discards events.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		if r == nil {
			r = NopReporter()
		}
		p.reporter = r
	}
}

// WithLimiter attaches a shared token rate limiter covering both
// chunk generation and embedding requests. Nil disables rate limiting.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(p *Pipeline) {
		p.limiter = limiter
	}
}

// WithRetryConfig overrides the default backoff tunables for embedding
// calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(p *Pipeline) {
		p.retryCfg = cfg.WithDefaults()
	}
}

// WithEmbedDelay inserts a fixed pause between consecutive embedding
// requests, for providers that prefer pacing over bursts.
func WithEmbedDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		p.embedDelay = d
	}
}

// WithTraceDir enables per-document audit trace files under dir.
func WithTraceDir(dir string) Option {
	return func(p *Pipeline) {
		p.traceDir = dir
	}
}

// WithStream forwards partial model output during the chunk stage.
func WithStream(stream ai.StreamFunc) Option {
	return func(p *Pipeline) {
		p.stream = stream
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates an import pipeline.
func NewPipeline(store storage.ChunkStore, extractor Extractor, chunker Chunker, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		reporter:  NopReporter(),
		retryCfg:  retry.DefaultConfig(),
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ImportFile imports a single document.
func (p *Pipeline) ImportFile(ctx context.Context, path string) error {
	return p.importFile(ctx, path, 1, 1)
}

// ImportBatch imports documents strictly in order, one at a time. The
// first fatal error aborts the batch; documents already imported stay
// persisted, later documents are untouched.
func (p *Pipeline) ImportBatch(ctx context.Context, paths []string) error {
	for i, path := range paths {
		if err := p.importFile(ctx, path, i+1, len(paths)); err != nil {
			return fmt.Errorf("document %d of %d: %w", i+1, len(paths), err)
		}
	}
	return nil
}

func (p *Pipeline) importFile(ctx context.Context, path string, current, total int) error {
	// Verified before any stage runs or events fire, so a typo'd path
	// never shows up as a started document.
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("document not accessible: %w", err)
	}

	name := filepath.Base(path)
	trace, err := p.openTrace(path)
	if err != nil {
		return err
	}
	defer trace.Close()

	started := time.Now()
	p.report(current, total, name, StageStart, "", 0)
	p.logger.Info("importing document", "path", path, "position", current, "total", total)

	text, elapsed, err := timed(func() (string, error) {
		return p.extractor.ExtractText(path)
	})
	if err != nil {
		return p.fail(current, total, name, trace, fmt.Errorf("extract: %w", err))
	}
	p.report(current, total, name, StageExtract, fmt.Sprintf("%d chars", len(text)), elapsed)

	cb := chunking.Callbacks{
		OnWait: p.waitReporter(current, total, name, trace),
		Stream: p.stream,
		Trace:  trace.Record,
	}
	chunks, elapsed, err := timed(func() ([]core.Chunk, error) {
		return p.chunker.ChunkDocument(ctx, path, text, cb)
	})
	if err != nil {
		return p.fail(current, total, name, trace, fmt.Errorf("chunk: %w", err))
	}
	p.report(current, total, name, StageChunk, fmt.Sprintf("%d chunks", len(chunks)), elapsed)

	elapsed, err = timedErr(func() error {
		return p.embedAndSave(ctx, chunks, current, total, name, trace)
	})
	if err != nil {
		return p.fail(current, total, name, trace, err)
	}
	p.report(current, total, name, StageEmbedSave, fmt.Sprintf("%d chunks", len(chunks)), elapsed)

	p.report(current, total, name, StageDone, "", time.Since(started))
	trace.Record(fmt.Sprintf("done: %d chunks in %s", len(chunks), time.Since(started).Round(time.Millisecond)))
	return nil
}

// embedAndSave embeds chunks in index order and persists the document
// in a single batch only after every chunk has its vector.
func (p *Pipeline) embedAndSave(ctx context.Context, chunks []core.Chunk, current, total int, name string, trace Trace) error {
	onWait := p.waitReporter(current, total, name, trace)

	for i, chunk := range chunks {
		if p.embedDelay > 0 && i > 0 {
			timer := time.NewTimer(p.embedDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, tokenizer.Estimate(chunk.Content)); err != nil {
				return err
			}
		}

		vector, err := retry.Do(ctx, p.retryCfg, "embed", onWait, func(ctx context.Context) ([]float32, error) {
			return p.embedder.EmbedText(ctx, chunk.Content)
		})
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}
		chunks[i] = chunk.WithVector(vector)
	}

	if err := p.store.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// waitReporter surfaces throttle waits as 429-wait progress events and
// trace lines.
func (p *Pipeline) waitReporter(current, total int, name string, trace Trace) retry.WaitFunc {
	return func(wait time.Duration, attempt int, operation string) {
		secs := int(wait.Round(time.Second) / time.Second)
		info := fmt.Sprintf("%ds (%s retry %d/%d)", secs, operation, attempt, p.retryCfg.MaxRetries)
		p.report(current, total, name, StageThrottle, info, 0)
		trace.Record("throttled: " + info)
	}
}

func (p *Pipeline) report(current, total int, name, stage, info string, elapsed time.Duration) {
	p.reporter.Report(Progress{
		Current:      current,
		Total:        total,
		FileName:     name,
		Stage:        stage,
		Info:         info,
		StageElapsed: elapsed,
	})
}

// fail emits the Error event, records the trace line, and returns the
// error for the batch to abort on.
func (p *Pipeline) fail(current, total int, name string, trace Trace, err error) error {
	p.logger.Error("import failed", "file", name, "err", err)
	trace.Record("error: " + err.Error())
	p.report(current, total, name, StageError, err.Error(), 0)
	return err
}

func (p *Pipeline) openTrace(path string) (Trace, error) {
	if p.traceDir == "" {
		return NopTrace(), nil
	}
	return newFileTrace(p.traceDir, path)
}

func timed[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	v, err := fn()
	return v, time.Since(start), err
}

func timedErr(fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	return time.Since(start), err
}
