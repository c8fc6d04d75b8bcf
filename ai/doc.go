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


// Package ai provides abstractions for the AI services used in Corpusit.
//
// It defines interfaces for the two remote-bound operations of the
// ingestion pipeline, semantic chunk generation and text embedding,
// allowing the chunking and pipeline logic to depend on abstractions
// rather than concrete model clients.
//
// The package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Production constructors (openai.NewProvider, openai.NewEmbedder, etc.)
// return interface types to enforce abstraction. Mock constructors return
// concrete types so tests can inject behavior and assert call counts.
//
// Throttling is surfaced uniformly: implementations classify provider
// rate-limit failures into *retry.ThrottleError, letting the retry
// orchestrator branch on data instead of provider error types.
package ai
