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
	"github.com/poiesic/corpusit/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages the lifecycle of the embedder and chunk generator.
type Provider struct {
	embedder  *Embedder
	generator *ChunkGenerator
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider with an embedder and chunk generator
// sharing the given configuration.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	generator, err := newChunkGenerator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder:  embedder,
		generator: generator,
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ChunkGenerator returns the chunk generation service.
func (p *Provider) ChunkGenerator() ai.ChunkGenerator {
	return p.generator
}

// Close releases resources held by the provider.
// The underlying HTTP clients hold no persistent connections requiring cleanup.
func (p *Provider) Close() error {
	return nil
}
