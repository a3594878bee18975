package core

import (
	"fmt"
)

// Config carries the process-wide LLM wiring. The completion model serves
// mining, selection and generalization; the embedding model is fixed for the
// lifetime of a record store so similarity scores stay comparable.
type Config struct {
	DefaultLLM       LLM
	EmbeddingLLM     LLM
	ConcurrencyLevel int
}

var GlobalConfig = &Config{
	// default concurrency 1
	ConcurrencyLevel: 1,
}

// ConfigureDefaultLLM sets up the default completion LLM to be used across the package.
func ConfigureDefaultLLM(apiKey string, modelID ModelID) error {
	if DefaultFactory == nil {
		return fmt.Errorf("no LLM factory registered")
	}
	llmInstance, err := DefaultFactory.CreateLLM(apiKey, modelID)
	if err != nil {
		return fmt.Errorf("failed to configure default LLM: %w", err)
	}
	GlobalConfig.DefaultLLM = llmInstance
	return nil
}

// ConfigureEmbeddingLLM sets up the fixed embedding LLM.
func ConfigureEmbeddingLLM(apiKey string, modelID ModelID) error {
	if DefaultFactory == nil {
		return fmt.Errorf("no LLM factory registered")
	}
	llmInstance, err := DefaultFactory.CreateLLM(apiKey, modelID)
	if err != nil {
		return fmt.Errorf("failed to configure embedding LLM: %w", err)
	}
	GlobalConfig.EmbeddingLLM = llmInstance
	return nil
}

// GetDefaultLLM returns the default completion LLM.
func GetDefaultLLM() LLM {
	return GlobalConfig.DefaultLLM
}

// GetEmbeddingLLM returns the embedding LLM.
func GetEmbeddingLLM() LLM {
	return GlobalConfig.EmbeddingLLM
}

// SetDefaultLLM sets the default LLM directly.
func SetDefaultLLM(llm LLM) {
	GlobalConfig.DefaultLLM = llm
}

// SetEmbeddingLLM sets the embedding LLM directly.
func SetEmbeddingLLM(llm LLM) {
	GlobalConfig.EmbeddingLLM = llm
}

func SetConcurrencyOptions(level int) {
	if level > 0 {
		GlobalConfig.ConcurrencyLevel = level
	} else {
		GlobalConfig.ConcurrencyLevel = 1 // Reset to default value for invalid inputs
	}
}
