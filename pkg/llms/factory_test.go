package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
)

func TestNewLLM(t *testing.T) {
	testCases := []struct {
		name      string
		apiKey    string
		modelID   core.ModelID
		expectErr bool
		checkType func(t *testing.T, llm core.LLM)
	}{
		{
			name:    "Anthropic Sonnet",
			apiKey:  "test-api-key",
			modelID: core.ModelAnthropicSonnet,
			checkType: func(t *testing.T, llm core.LLM) {
				_, ok := llm.(*AnthropicLLM)
				assert.True(t, ok, "Expected AnthropicLLM")
			},
		},
		{
			name:    "Anthropic Haiku",
			apiKey:  "test-api-key",
			modelID: core.ModelAnthropicHaiku,
			checkType: func(t *testing.T, llm core.LLM) {
				_, ok := llm.(*AnthropicLLM)
				assert.True(t, ok, "Expected AnthropicLLM")
			},
		},
		{
			name:    "Ollama model",
			apiKey:  "",
			modelID: core.ModelID("ollama:nomic-embed-text"),
			checkType: func(t *testing.T, llm core.LLM) {
				_, ok := llm.(*OllamaLLM)
				assert.True(t, ok, "Expected OllamaLLM")
			},
		},
		{
			name:      "Malformed ollama ID",
			apiKey:    "",
			modelID:   core.ModelID("ollama:"),
			expectErr: true,
		},
		{
			name:      "Unsupported model",
			apiKey:    "key",
			modelID:   core.ModelID("gpt-unknown"),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			llm, err := NewLLM(tc.apiKey, tc.modelID)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, llm)
			if tc.modelID == core.ModelID("ollama:nomic-embed-text") {
				// ollama IDs keep only the model part
				assert.Equal(t, "nomic-embed-text", llm.ModelID())
			} else {
				assert.Equal(t, string(tc.modelID), llm.ModelID())
			}
			if tc.checkType != nil {
				tc.checkType(t, llm)
			}
		})
	}
}

func TestEnsureFactory(t *testing.T) {
	orig := core.DefaultFactory
	defer core.SetDefaultFactory(orig)

	core.DefaultFactory = nil
	EnsureFactory()
	require.NotNil(t, core.DefaultFactory)

	llm, err := core.DefaultFactory.CreateLLM("key", core.ModelAnthropicHaiku)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", llm.ProviderName())
}
