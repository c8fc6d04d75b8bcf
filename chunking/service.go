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


package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/corpusit/ai"
	"github.com/poiesic/corpusit/core"
	"github.com/poiesic/corpusit/ratelimit"
	"github.com/poiesic/corpusit/retry"
	"github.com/poiesic/corpusit/tokenizer"
)

// Config holds the token budgets steering panelization and chunk sizing.
// The zero value is usable; zero fields fall back to the defaults below.
type Config struct {
	// PanelTokens is the target token size of one generation window.
	// Default 2000.
	PanelTokens int

	// OverlapTokens is how many tokens consecutive panels share.
	// Default 400.
	OverlapTokens int

	// SingleWindowTokens is the budget under which a document is chunked
	// in one request with no panelization. Default 3000.
	SingleWindowTokens int

	// ChunkMinTokens and ChunkMaxTokens bound the sub-chunk size the
	// model is asked for. Defaults 400 and 600.
	ChunkMinTokens int
	ChunkMaxTokens int
}

// DefaultConfig returns the default token budgets.
func DefaultConfig() Config {
	return Config{
		PanelTokens:        2000,
		OverlapTokens:      400,
		SingleWindowTokens: 3000,
		ChunkMinTokens:     400,
		ChunkMaxTokens:     600,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.PanelTokens <= 0 {
		c.PanelTokens = def.PanelTokens
	}
	if c.OverlapTokens <= 0 {
		c.OverlapTokens = def.OverlapTokens
	}
	if c.SingleWindowTokens <= 0 {
		c.SingleWindowTokens = def.SingleWindowTokens
	}
	if c.ChunkMinTokens <= 0 {
		c.ChunkMinTokens = def.ChunkMinTokens
	}
	if c.ChunkMaxTokens <= 0 {
		c.ChunkMaxTokens = def.ChunkMaxTokens
	}
	return c
}

// Callbacks lets the caller observe a chunking run. All fields are
// optional.
type Callbacks struct {
	// OnWait observes throttle waits before they start.
	OnWait retry.WaitFunc

	// Stream receives partial model output, status-marker lines removed.
	Stream ai.StreamFunc

	// Trace records audit lines: panel boundaries, model status
	// self-reports, per-panel chunk counts.
	Trace func(line string)
}

// Service turns a document's text into an ordered chunk sequence by
// panelizing it, running one generation request per panel through the
// rate limiter and retry orchestrator, and stitching the results.
type Service struct {
	codec     tokenizer.Codec
	generator ai.ChunkGenerator
	limiter   *ratelimit.Limiter
	retryCfg  retry.Config
	config    Config
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter attaches a shared token rate limiter. Nil disables
// rate limiting.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// WithRetryConfig overrides the default backoff tunables.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *Service) {
		s.retryCfg = cfg
	}
}

// WithConfig overrides the default token budgets.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg.WithDefaults()
	}
}

// NewService creates a chunking service around a codec and generator.
func NewService(codec tokenizer.Codec, generator ai.ChunkGenerator, opts ...Option) *Service {
	s := &Service{
		codec:     codec,
		generator: generator,
		retryCfg:  retry.DefaultConfig(),
		config:    DefaultConfig(),
		logger:    slog.Default().With("component", "chunking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkDocument chunks one document's text. The returned chunks carry
// contiguous indices from 0 and no vectors yet.
func (s *Service) ChunkDocument(ctx context.Context, documentPath, text string, cb Callbacks) ([]core.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	tokens := s.codec.Encode(text)

	var panels []Panel
	if len(tokens) <= s.config.SingleWindowTokens {
		// Whole document fits one window; skip panelization entirely.
		panels = []Panel{{Text: text, Start: 0, End: len(tokens)}}
	} else {
		var err error
		panels, err = BuildPanels(s.codec, tokens, s.config.PanelTokens, s.config.OverlapTokens)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("chunking document",
		"path", documentPath,
		"tokens", len(tokens),
		"panels", len(panels))
	s.trace(cb, fmt.Sprintf("document %s: %d tokens, %d panels", documentPath, len(tokens), len(panels)))

	panelChunks := make([][]string, 0, len(panels))
	for i, panel := range panels {
		parts, err := s.chunkPanel(ctx, panel, i, len(panels), cb)
		if err != nil {
			s.trace(cb, fmt.Sprintf("panel %d/%d failed: %v", i+1, len(panels), err))
			return nil, fmt.Errorf("panel %d/%d: %w", i+1, len(panels), err)
		}
		s.trace(cb, fmt.Sprintf("panel %d/%d [%d:%d): %d chunks", i+1, len(panels), panel.Start, panel.End, len(parts)))
		panelChunks = append(panelChunks, parts)
	}

	chunks := Stitch(documentPath, panelChunks)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	s.logger.Info("document chunked", "path", documentPath, "chunks", len(chunks))
	return chunks, nil
}

// chunkPanel runs one generation request for a panel, with rate
// limiting and throttle retry around the call.
func (s *Service) chunkPanel(ctx context.Context, panel Panel, index, count int, cb Callbacks) ([]string, error) {
	prompt := buildPrompt(panel.Text, index, count, s.config.OverlapTokens, s.config.ChunkMinTokens, s.config.ChunkMaxTokens)

	if s.limiter != nil {
		// Sized on the prompt plus the response's worst case, which is
		// the panel text restated verbatim.
		budget := tokenizer.Estimate(prompt) + panel.Tokens()
		if err := s.limiter.Wait(ctx, budget); err != nil {
			return nil, err
		}
	}

	response, err := retry.Do(ctx, s.retryCfg, "chunk", cb.OnWait, func(ctx context.Context) (string, error) {
		return s.generator.GenerateChunks(ctx, prompt, filterStream(cb.Stream))
	})
	if err != nil {
		return nil, err
	}

	for _, line := range StatusLines(response) {
		s.trace(cb, "model: "+line)
	}
	return ParseChunks(response), nil
}

func (s *Service) trace(cb Callbacks, line string) {
	if cb.Trace != nil {
		cb.Trace(line)
	}
}

// filterStream wraps a StreamFunc so status-marker lines never reach
// the user-facing preview.
func filterStream(stream ai.StreamFunc) ai.StreamFunc {
	if stream == nil {
		return nil
	}
	return func(charsSoFar int, previewTail string) {
		// The tail can end mid-line inside a status report, so lines
		// that are a streamed prefix of the marker are hidden too.
		lines := strings.Split(previewTail, "\n")
		kept := lines[:0]
		for _, line := range lines {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, statusMarker) || (t != "" && strings.HasPrefix(statusMarker, t)) {
				continue
			}
			kept = append(kept, line)
		}
		stream(charsSoFar, strings.Join(kept, "\n"))
	}
}
