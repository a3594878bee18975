package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	BaseLLM
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error) {
	return &LLMResponse{Content: "stub"}, nil
}

func (s *stubLLM) GenerateWithJSON(ctx context.Context, prompt string, options ...GenerateOption) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (s *stubLLM) CreateEmbedding(ctx context.Context, input string, options ...EmbeddingOption) (*EmbeddingResult, error) {
	return &EmbeddingResult{Vector: []float32{1}}, nil
}

func (s *stubLLM) CreateEmbeddings(ctx context.Context, inputs []string, options ...EmbeddingOption) (*BatchEmbeddingResult, error) {
	return &BatchEmbeddingResult{ErrorIndex: -1}, nil
}

type stubFactory struct {
	created []ModelID
}

func (f *stubFactory) CreateLLM(apiKey string, modelID ModelID) (LLM, error) {
	f.created = append(f.created, modelID)
	return &stubLLM{}, nil
}

func resetGlobals(t *testing.T) {
	t.Helper()
	prevConfig := *GlobalConfig
	prevFactory := DefaultFactory
	t.Cleanup(func() {
		*GlobalConfig = prevConfig
		DefaultFactory = prevFactory
	})
}

func TestConfigureDefaultLLM(t *testing.T) {
	resetGlobals(t)

	factory := &stubFactory{}
	SetDefaultFactory(factory)

	require.NoError(t, ConfigureDefaultLLM("key", ModelAnthropicHaiku))
	assert.NotNil(t, GetDefaultLLM())
	assert.Equal(t, []ModelID{ModelAnthropicHaiku}, factory.created)
}

func TestConfigureEmbeddingLLM(t *testing.T) {
	resetGlobals(t)

	factory := &stubFactory{}
	SetDefaultFactory(factory)

	require.NoError(t, ConfigureEmbeddingLLM("", ModelID("nomic-embed-text")))
	assert.NotNil(t, GetEmbeddingLLM())
}

func TestConfigureWithoutFactory(t *testing.T) {
	resetGlobals(t)

	DefaultFactory = nil
	assert.Error(t, ConfigureDefaultLLM("key", ModelAnthropicHaiku))
	assert.Error(t, ConfigureEmbeddingLLM("key", ModelAnthropicHaiku))
}

func TestSetLLMsDirectly(t *testing.T) {
	resetGlobals(t)

	llm := &stubLLM{}
	SetDefaultLLM(llm)
	SetEmbeddingLLM(llm)
	assert.Same(t, llm, GetDefaultLLM())
	assert.Same(t, llm, GetEmbeddingLLM())
}

func TestSetConcurrencyOptions(t *testing.T) {
	resetGlobals(t)

	SetConcurrencyOptions(4)
	assert.Equal(t, 4, GlobalConfig.ConcurrencyLevel)

	SetConcurrencyOptions(-1)
	assert.Equal(t, 1, GlobalConfig.ConcurrencyLevel)
}
