package config

import (
	"time"
)

// GetDefaultConfig returns the default pipeline configuration. Defaults are
// applied before validation so a sparse YAML file still validates.
func GetDefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			ModelID:  "claude-3-haiku-20240307",
			Generation: GenerationConfig{
				MaxTokens:   8192,
				Temperature: 0.5,
				TopP:        0.9,
			},
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			ModelID:  "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Mining: MiningConfig{
			MaxRetries:   3,
			RetryBackoff: 2 * time.Second,
			Workers:      3,
		},
		Retrieval: RetrievalConfig{
			ShortlistK:   10,
			AbbreviatedK: 3,
			MaxRetries:   3,
			RetryBackoff: 2 * time.Second,
			Workers:      3,
		},
		Paths: PathsConfig{
			RecordStore:     "experience_store.json",
			TrainIssueTypes: "issue_types_train.json",
			TestIssueTypes:  "issue_types_test.json",
			RunsDir:         "runs",
			EmbeddingIndex:  "embedding_index.db",
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Color: true,
		},
	}
}

// applyDefaults fills zero-valued fields of cfg from the defaults. Only
// fields a YAML file plausibly omits are covered.
func applyDefaults(cfg *Config) {
	def := GetDefaultConfig()

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.ModelID == "" {
		cfg.LLM.ModelID = def.LLM.ModelID
	}
	if cfg.LLM.Generation.MaxTokens == 0 {
		cfg.LLM.Generation.MaxTokens = def.LLM.Generation.MaxTokens
	}
	if cfg.LLM.Generation.TopP == 0 {
		cfg.LLM.Generation.TopP = def.LLM.Generation.TopP
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.ModelID == "" {
		cfg.Embedding.ModelID = def.Embedding.ModelID
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = def.Embedding.BaseURL
	}

	if cfg.Mining.MaxRetries == 0 {
		cfg.Mining.MaxRetries = def.Mining.MaxRetries
	}
	if cfg.Mining.RetryBackoff == 0 {
		cfg.Mining.RetryBackoff = def.Mining.RetryBackoff
	}
	if cfg.Mining.Workers == 0 {
		cfg.Mining.Workers = def.Mining.Workers
	}

	if cfg.Retrieval.ShortlistK == 0 {
		cfg.Retrieval.ShortlistK = def.Retrieval.ShortlistK
	}
	if cfg.Retrieval.AbbreviatedK == 0 {
		cfg.Retrieval.AbbreviatedK = def.Retrieval.AbbreviatedK
	}
	if cfg.Retrieval.MaxRetries == 0 {
		cfg.Retrieval.MaxRetries = def.Retrieval.MaxRetries
	}
	if cfg.Retrieval.RetryBackoff == 0 {
		cfg.Retrieval.RetryBackoff = def.Retrieval.RetryBackoff
	}
	if cfg.Retrieval.Workers == 0 {
		cfg.Retrieval.Workers = def.Retrieval.Workers
	}

	if cfg.Paths.RecordStore == "" {
		cfg.Paths.RecordStore = def.Paths.RecordStore
	}
	if cfg.Paths.TrainIssueTypes == "" {
		cfg.Paths.TrainIssueTypes = def.Paths.TrainIssueTypes
	}
	if cfg.Paths.TestIssueTypes == "" {
		cfg.Paths.TestIssueTypes = def.Paths.TestIssueTypes
	}
	if cfg.Paths.RunsDir == "" {
		cfg.Paths.RunsDir = def.Paths.RunsDir
	}
	if cfg.Paths.EmbeddingIndex == "" {
		cfg.Paths.EmbeddingIndex = def.Paths.EmbeddingIndex
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
