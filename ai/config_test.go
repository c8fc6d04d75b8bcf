package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.NotEmpty(t, cfg.GenerationModel)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://models.internal:8080"),
		WithGenerationModel("gpt-4o-mini"),
		WithEmbeddingModel("text-embedding-3-small"),
	)

	assert.Equal(t, "http://models.internal:8080", cfg.GenerationHost)
	assert.Equal(t, "http://models.internal:8080", cfg.EmbeddingHost)
	assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

func TestNewConfigSplitHosts(t *testing.T) {
	cfg := NewConfig(
		WithGenerationHost("http://gen.internal:8080"),
		WithEmbeddingHost("http://embed.internal:9090"),
	)

	assert.Equal(t, "http://gen.internal:8080", cfg.GenerationHost)
	assert.Equal(t, "http://embed.internal:9090", cfg.EmbeddingHost)
}

func TestNormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)

	trailing := NewConfig(WithHost("http://localhost:11434/"))
	trailing.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", trailing.GenerationHost)

	already := NewConfig(WithHost("http://localhost:11434/v1"))
	already.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", already.GenerationHost)
}

func TestValidateMissingFields(t *testing.T) {
	missingGenHost := &Config{EmbeddingHost: "http://x/v1", GenerationModel: "m", EmbeddingModel: "e"}
	assert.ErrorContains(t, missingGenHost.Validate(), "GenerationHost")

	missingEmbedHost := &Config{GenerationHost: "http://x/v1", GenerationModel: "m", EmbeddingModel: "e"}
	assert.ErrorContains(t, missingEmbedHost.Validate(), "EmbeddingHost")

	missingGenModel := &Config{GenerationHost: "http://x/v1", EmbeddingHost: "http://x/v1", EmbeddingModel: "e"}
	assert.ErrorContains(t, missingGenModel.Validate(), "GenerationModel")

	missingEmbedModel := &Config{GenerationHost: "http://x/v1", EmbeddingHost: "http://x/v1", GenerationModel: "m"}
	assert.ErrorContains(t, missingEmbedModel.Validate(), "EmbeddingModel")
}
