package core

// LLMFactory defines a simple interface for creating LLM instances.
// The llms package registers the production factory; tests may install
// their own to hand back fakes.
type LLMFactory interface {
	// CreateLLM creates a new LLM instance.
	CreateLLM(apiKey string, modelID ModelID) (LLM, error)
}

// DefaultFactory is the global factory instance used by the configuration system.
var DefaultFactory LLMFactory

// SetDefaultFactory installs the factory used by ConfigureDefaultLLM and
// ConfigureEmbeddingLLM.
func SetDefaultFactory(f LLMFactory) {
	DefaultFactory = f
}
