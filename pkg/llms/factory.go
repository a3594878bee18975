package llms

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// NewLLM creates a new LLM instance based on the provided model ID.
// Anthropic models are addressed by their full model name; Ollama models use
// the "ollama:<model_name>" form.
func NewLLM(apiKey string, modelID core.ModelID) (core.LLM, error) {
	switch {
	case strings.HasPrefix(string(modelID), "claude-"):
		return NewAnthropicLLM(apiKey, anthropic.Model(modelID))
	case strings.HasPrefix(string(modelID), "ollama:"):
		parts := strings.SplitN(string(modelID), ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, errors.New(errors.InvalidInput, "invalid Ollama model ID format. Use 'ollama:<model_name>'")
		}
		return NewOllamaLLM(DefaultOllamaURL, parts[1])
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported model ID"),
			errors.Fields{"model": modelID})
	}
}

type llmFactory struct{}

// CreateLLM implements core.LLMFactory.
func (f llmFactory) CreateLLM(apiKey string, modelID core.ModelID) (core.LLM, error) {
	return NewLLM(apiKey, modelID)
}

// EnsureFactory registers the production LLM factory with core if none is
// installed yet.
func EnsureFactory() {
	if core.DefaultFactory == nil {
		core.SetDefaultFactory(llmFactory{})
	}
}
