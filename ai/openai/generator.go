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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/corpusit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// previewTailLen is how many trailing characters of the accumulated
// response are forwarded as the stream preview.
const previewTailLen = 48

// ErrNoCompletion indicates the model returned no choices.
var ErrNoCompletion = errors.New("model returned no completion")

// ChunkGenerator implements ai.ChunkGenerator using OpenAI-compatible chat APIs.
type ChunkGenerator struct {
	client llms.Model
	logger *slog.Logger
}

// newChunkGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChunkGenerator(config *ai.Config) (*ChunkGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken("none"),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChunkGenerator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewChunkGenerator creates a new chunk generator using the provided configuration.
//
// Returns ai.ChunkGenerator interface to enforce abstraction.
func NewChunkGenerator(config *ai.Config) (ai.ChunkGenerator, error) {
	return newChunkGenerator(config)
}

// GenerateChunks sends the chunking prompt to the model and returns the
// full response text. Partial output is forwarded through stream while
// the call is in flight. Throttling is reported as *retry.ThrottleError.
func (g *ChunkGenerator) GenerateChunks(ctx context.Context, prompt string, stream ai.StreamFunc) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	opts := []llms.CallOption{llms.WithTemperature(0.2)}
	if stream != nil {
		var buf strings.Builder
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			buf.Write(chunk)
			text := buf.String()
			tail := text
			if len(tail) > previewTailLen {
				tail = tail[len(tail)-previewTailLen:]
			}
			stream(len(text), tail)
			return nil
		}))
	}

	g.logger.Debug("requesting chunk generation", "promptChars", len(prompt))

	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("chunk generation failed", "err", err)
		return "", classifyError(err)
	}

	if len(response.Choices) == 0 {
		g.logger.Warn("no choices returned from model")
		return "", ErrNoCompletion
	}

	return response.Choices[0].Content, nil
}
