package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/corpusit/ai/mock"
	"github.com/poiesic/corpusit/chunking"
	"github.com/poiesic/corpusit/core"
	"github.com/poiesic/corpusit/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ChunkStore for pipeline tests.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]core.Chunk
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]core.Chunk)}
}

func (s *memStore) SaveChunks(ctx context.Context, chunks []core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(chunks) == 0 {
		return nil
	}
	s.docs[chunks[0].DocumentPath] = append([]core.Chunk(nil), chunks...)
	return nil
}

func (s *memStore) GetChunks(ctx context.Context, documentPath string) ([]core.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[documentPath], nil
}

func (s *memStore) DeleteDocument(ctx context.Context, documentPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, documentPath)
	return nil
}

func (s *memStore) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	return nil, nil
}

func (s *memStore) Documents(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.docs))
	for path := range s.docs {
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *memStore) Close() error { return nil }

// fileExtractor reads the file verbatim.
type fileExtractor struct{}

func (fileExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

// fakeChunker splits text into fixed mock chunks, or fails on demand.
type fakeChunker struct {
	failFor map[string]error
}

func (c *fakeChunker) ChunkDocument(ctx context.Context, documentPath, text string, cb chunking.Callbacks) ([]core.Chunk, error) {
	if err := c.failFor[filepath.Base(documentPath)]; err != nil {
		return nil, err
	}
	return []core.Chunk{
		{Index: 0, Content: "first half of " + documentPath, DocumentPath: documentPath},
		{Index: 1, Content: "second half of " + documentPath, DocumentPath: documentPath},
	}, nil
}

// eventRecorder collects progress events in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []Progress
}

func (r *eventRecorder) Report(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *eventRecorder) stages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}

func fastRetry() retry.Config {
	return retry.Config{
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Jitter:     time.Millisecond,
		MaxRetries: 3,
	}
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, store *memStore, chunker Chunker, embedder *mock.MockEmbedder, rec Reporter) *Pipeline {
	t.Helper()
	p, err := NewPipeline(store, fileExtractor{}, chunker, embedder,
		WithReporter(rec),
		WithRetryConfig(fastRetry()))
	require.NoError(t, err)
	return p
}

func TestImportFileStageSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "notes.md", "some document text")

	store := newMemStore()
	rec := &eventRecorder{}
	p := newTestPipeline(t, store, &fakeChunker{}, mock.NewMockEmbedder(), rec)

	require.NoError(t, p.ImportFile(context.Background(), path))

	assert.Equal(t, []string{StageStart, StageExtract, StageChunk, StageEmbedSave, StageDone}, rec.stages())

	for _, e := range rec.events {
		assert.Equal(t, 1, e.Current)
		assert.Equal(t, 1, e.Total)
		assert.Equal(t, "notes.md", e.FileName)
	}
	assert.Equal(t, "2 chunks", rec.events[2].Info)
	assert.Zero(t, rec.events[0].StageElapsed, "stage-entry event carries no elapsed time")
	assert.Positive(t, rec.events[4].StageElapsed, "Done carries the total import time")
}

func TestImportFileSavesEmbeddedChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.txt", "text")

	store := newMemStore()
	p := newTestPipeline(t, store, &fakeChunker{}, mock.NewMockEmbedder(), NopReporter())

	require.NoError(t, p.ImportFile(context.Background(), path))

	chunks, err := store.GetChunks(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.True(t, chunk.HasVector(), "chunk %d embedded before save", i)
	}
}

func TestImportFileMissingFileEmitsNoEvents(t *testing.T) {
	store := newMemStore()
	rec := &eventRecorder{}
	p := newTestPipeline(t, store, &fakeChunker{}, mock.NewMockEmbedder(), rec)

	err := p.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accessible")
	assert.Empty(t, rec.events, "a missing file is reported before any stage runs")
}

func TestImportFileThrottledEmbedEmits429Wait(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "text")

	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, retry.Throttled(errors.New("429 too many requests"), time.Millisecond)
		}
		return []float32{0.1, 0.2}, nil
	}

	store := newMemStore()
	rec := &eventRecorder{}
	p := newTestPipeline(t, store, &fakeChunker{}, embedder, rec)

	require.NoError(t, p.ImportFile(context.Background(), path))

	var throttles []Progress
	for _, e := range rec.events {
		if e.Stage == StageThrottle {
			throttles = append(throttles, e)
		}
	}
	require.Len(t, throttles, 1)
	assert.Equal(t, "0s (embed retry 1/3)", throttles[0].Info)
}

func TestImportFileChunkFailureEmitsError(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "bad.md", "text")

	chunker := &fakeChunker{failFor: map[string]error{"bad.md": errors.New("model rejected input")}}
	store := newMemStore()
	rec := &eventRecorder{}
	p := newTestPipeline(t, store, chunker, mock.NewMockEmbedder(), rec)

	err := p.ImportFile(context.Background(), path)
	require.Error(t, err)

	stages := rec.stages()
	assert.Equal(t, []string{StageStart, StageExtract, StageError}, stages)
	assert.Contains(t, rec.events[len(rec.events)-1].Info, "model rejected input")

	docs, _ := store.Documents(context.Background())
	assert.Empty(t, docs, "nothing persisted for a failed document")
}

func TestImportBatchSequentialAbort(t *testing.T) {
	dir := t.TempDir()
	doc1 := writeDoc(t, dir, "one.md", "first")
	doc2 := writeDoc(t, dir, "two.md", "second")
	doc3 := writeDoc(t, dir, "three.md", "third")

	chunker := &fakeChunker{failFor: map[string]error{"two.md": errors.New("boom")}}
	store := newMemStore()
	rec := &eventRecorder{}
	p := newTestPipeline(t, store, chunker, mock.NewMockEmbedder(), rec)

	err := p.ImportBatch(context.Background(), []string{doc1, doc2, doc3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 2 of 3")

	// Document 1 stays persisted, document 3 was never started.
	chunks, _ := store.GetChunks(context.Background(), doc1)
	assert.Len(t, chunks, 2)
	chunks, _ = store.GetChunks(context.Background(), doc3)
	assert.Empty(t, chunks)

	for _, e := range rec.events {
		assert.NotEqual(t, "three.md", e.FileName, "no events for documents after the abort")
	}
}

func TestImportFileTraceFileWritten(t *testing.T) {
	dir := t.TempDir()
	traceDir := filepath.Join(dir, "traces")
	path := writeDoc(t, dir, "doc.md", "text")

	store := newMemStore()
	p, err := NewPipeline(store, fileExtractor{}, &fakeChunker{}, mock.NewMockEmbedder(),
		WithRetryConfig(fastRetry()),
		WithTraceDir(traceDir))
	require.NoError(t, err)

	require.NoError(t, p.ImportFile(context.Background(), path))

	name := fmt.Sprintf("%016x.log", uint64(core.IDFromContent(path)))
	data, err := os.ReadFile(filepath.Join(traceDir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "import "+path)
	assert.Contains(t, string(data), "done: 2 chunks")
}

func TestNewPipelineValidatesDependencies(t *testing.T) {
	store := newMemStore()
	embedder := mock.NewMockEmbedder()

	_, err := NewPipeline(nil, fileExtractor{}, &fakeChunker{}, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(store, nil, &fakeChunker{}, embedder)
	assert.ErrorIs(t, err, ErrExtractorRequired)

	_, err = NewPipeline(store, fileExtractor{}, nil, embedder)
	assert.ErrorIs(t, err, ErrChunkerRequired)

	_, err = NewPipeline(store, fileExtractor{}, &fakeChunker{}, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
