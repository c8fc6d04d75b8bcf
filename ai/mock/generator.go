package mock

import (
	"context"
	"strings"

	"github.com/poiesic/corpusit/ai"
)

// MockChunkGenerator is a test double for ai.ChunkGenerator.
// It allows custom behavior injection via function fields.
type MockChunkGenerator struct {
	// GenerateFunc is called by GenerateChunks if set.
	// If nil, uses default echo behavior.
	GenerateFunc func(ctx context.Context, prompt string, stream ai.StreamFunc) (string, error)

	// Prompts records every prompt passed to GenerateChunks, in order.
	Prompts []string

	callCount int
}

// NewMockChunkGenerator creates a mock chunk generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockChunkGenerator() *MockChunkGenerator {
	return &MockChunkGenerator{}
}

// GenerateChunks records the prompt and returns a mock model response.
// Default behavior: echoes the document text back as a single chunk,
// which exercises the caller's parsing of an undelimited response.
func (m *MockChunkGenerator) GenerateChunks(ctx context.Context, prompt string, stream ai.StreamFunc) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, stream)
	}

	response := strings.TrimSpace(prompt)
	if stream != nil {
		stream(len(response), tail(response, 48))
	}
	return response, nil
}

// CallCount returns the number of times GenerateChunks was called.
func (m *MockChunkGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockChunkGenerator) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.GenerateFunc = nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
