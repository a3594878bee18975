package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerateOptions(t *testing.T) {
	opts := NewGenerateOptions()
	assert.Equal(t, 8192, opts.MaxTokens)
	assert.Equal(t, 0.5, opts.Temperature)
}

func TestGenerateOptionsApply(t *testing.T) {
	opts := NewGenerateOptions()
	for _, opt := range []GenerateOption{
		WithMaxTokens(1024),
		WithTemperature(0.0),
		WithTopP(0.9),
		WithStopSequences("END", "STOP"),
	} {
		opt(opts)
	}

	assert.Equal(t, 1024, opts.MaxTokens)
	assert.Equal(t, 0.0, opts.Temperature)
	assert.Equal(t, 0.9, opts.TopP)
	assert.Equal(t, []string{"END", "STOP"}, opts.Stop)
}

func TestEmbeddingOptionsApply(t *testing.T) {
	opts := NewEmbeddingOptions()
	assert.Equal(t, 32, opts.BatchSize)

	for _, opt := range []EmbeddingOption{
		WithModel("nomic-embed-text"),
		WithBatchSize(8),
		WithParams(map[string]interface{}{"truncate": true}),
	} {
		opt(opts)
	}

	assert.Equal(t, "nomic-embed-text", opts.Model)
	assert.Equal(t, 8, opts.BatchSize)
	assert.Equal(t, true, opts.Params["truncate"])
}

func TestNewBaseLLM(t *testing.T) {
	endpoint := &EndpointConfig{BaseURL: "http://localhost:11434", TimeoutSec: 5}
	llm := NewBaseLLM("ollama", ModelID("nomic-embed-text"), []Capability{CapabilityEmbedding}, endpoint)

	assert.Equal(t, "ollama", llm.ProviderName())
	assert.Equal(t, "nomic-embed-text", llm.ModelID())
	assert.Equal(t, []Capability{CapabilityEmbedding}, llm.Capabilities())
	assert.Equal(t, endpoint, llm.GetEndpointConfig())
	assert.Equal(t, 5*time.Second, llm.GetHTTPClient().Timeout)
}

func TestNewBaseLLMDefaultTimeout(t *testing.T) {
	llm := NewBaseLLM("anthropic", ModelAnthropicHaiku, []Capability{CapabilityCompletion}, nil)
	assert.Equal(t, 30*time.Second, llm.GetHTTPClient().Timeout)
}

func TestWithTransportConfig(t *testing.T) {
	tc := DefaultTransportConfig()
	tc.MaxConnsPerHost = 7
	llm := NewBaseLLM("anthropic", ModelAnthropicHaiku, nil, nil, WithTransportConfig(tc))

	transport := llm.GetHTTPClient().Transport
	require.NotNil(t, transport)
}

func TestValidateEndpointConfig(t *testing.T) {
	assert.NoError(t, ValidateEndpointConfig(nil))

	err := ValidateEndpointConfig(&EndpointConfig{})
	assert.Error(t, err)

	cfg := &EndpointConfig{BaseURL: "http://localhost:11434"}
	require.NoError(t, ValidateEndpointConfig(cfg))
	assert.Equal(t, 30, cfg.TimeoutSec)
}
