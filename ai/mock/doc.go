// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChunkGenerator,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embedding, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	gen := mock.NewMockChunkGenerator()
//	gen.GenerateFunc = func(ctx context.Context, prompt string, stream ai.StreamFunc) (string, error) {
//	    return "first chunk\n<<<CHUNK>>>\nsecond chunk", nil
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockChunkGenerator: Echoes the prompt back as a single undelimited chunk
//   - MockProvider: Aggregates mock embedder and generator
package mock
