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


package corpusit

import (
	"context"
	"log/slog"

	"github.com/poiesic/corpusit/ai"
	"github.com/poiesic/corpusit/ai/openai"
	"github.com/poiesic/corpusit/chunking"
	"github.com/poiesic/corpusit/core"
	"github.com/poiesic/corpusit/extract"
	"github.com/poiesic/corpusit/ingest"
	"github.com/poiesic/corpusit/ratelimit"
	"github.com/poiesic/corpusit/retry"
	"github.com/poiesic/corpusit/storage"
	"github.com/poiesic/corpusit/storage/badger"
	"github.com/poiesic/corpusit/tokenizer"
)

// Corpus is the top-level handle on a document corpus: its chunk store
// plus the AI services used to fill and query it.
type Corpus struct {
	backend  *badger.Backend
	store    storage.ChunkStore
	provider ai.Provider
	codec    tokenizer.Codec
	limiter  *ratelimit.Limiter
	chunkCfg chunking.Config
	retryCfg retry.Config
	logger   *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig        *ai.Config
	chunkCfg        chunking.Config
	retryCfg        retry.Config
	encoding        string
	tokensPerMinute int
}

// WithAIConfig sets the AI service endpoints and models.
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = config
	}
}

// WithChunkingConfig sets the token budgets for panelization and chunk
// sizing.
func WithChunkingConfig(cfg chunking.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.chunkCfg = cfg
	}
}

// WithRetryConfig sets the backoff tunables for throttled AI calls.
func WithRetryConfig(cfg retry.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.retryCfg = cfg
	}
}

// WithEncoding selects the BPE encoding used for token budgeting.
func WithEncoding(encoding string) CorpusOption {
	return func(o *corpusOptions) {
		o.encoding = encoding
	}
}

// WithTokensPerMinute enables the shared token rate limiter.
// Zero disables rate limiting.
func WithTokensPerMinute(budget int) CorpusOption {
	return func(o *corpusOptions) {
		o.tokensPerMinute = budget
	}
}

// Open opens (creating if needed) a corpus database at filePath.
func Open(filePath string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
		chunkCfg: chunking.DefaultConfig(),
		retryCfg: retry.DefaultConfig(),
		encoding: tokenizer.DefaultEncoding,
	}
	for _, opt := range opts {
		opt(options)
	}

	codec, err := tokenizer.NewTiktoken(options.encoding)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var limiter *ratelimit.Limiter
	if options.tokensPerMinute > 0 {
		limiter = ratelimit.New(options.tokensPerMinute)
	}

	return &Corpus{
		backend:  backend,
		store:    store,
		provider: provider,
		codec:    codec,
		limiter:  limiter,
		chunkCfg: options.chunkCfg.WithDefaults(),
		retryCfg: options.retryCfg.WithDefaults(),
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and storage.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Store exposes the chunk store for direct queries.
func (c *Corpus) Store() storage.ChunkStore {
	return c.store
}

// NewPipeline creates an import pipeline wired to this corpus's store,
// AI services, rate limiter, and retry configuration. Caller options
// are applied after the wiring, so they can override it.
func (c *Corpus) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	chunker := chunking.NewService(c.codec, c.provider.ChunkGenerator(),
		chunking.WithLimiter(c.limiter),
		chunking.WithRetryConfig(c.retryCfg),
		chunking.WithConfig(c.chunkCfg))

	wired := []ingest.Option{
		ingest.WithLimiter(c.limiter),
		ingest.WithRetryConfig(c.retryCfg),
	}
	return ingest.NewPipeline(c.store, extract.New(), chunker, c.provider.Embedder(),
		append(wired, opts...)...)
}

// SearchText embeds the query and returns the most similar stored
// chunks, highest score first.
func (c *Corpus) SearchText(ctx context.Context, query string, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	vector, err := c.provider.Embedder().EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.store.FindSimilar(ctx, vector, minSimilarity, limit)
}
