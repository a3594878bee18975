package config

import (
	"time"
)

// Config is the complete configuration for the experience pipeline.
type Config struct {
	// Completion LLM used by the miner, selector and generalizer
	LLM LLMConfig `yaml:"llm" validate:"required"`

	// Embedding model backing the screener; fixed for a store's lifetime
	Embedding EmbeddingConfig `yaml:"embedding" validate:"required"`

	// Mining phase settings
	Mining MiningConfig `yaml:"mining,omitempty"`

	// Retrieval phase settings
	Retrieval RetrievalConfig `yaml:"retrieval,omitempty"`

	// On-disk artifact locations
	Paths PathsConfig `yaml:"paths,omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// LLMConfig holds the completion provider configuration.
type LLMConfig struct {
	// Provider name (anthropic, ollama)
	Provider string `yaml:"provider" validate:"required,oneof=anthropic ollama"`

	// Model ID (e.g. claude-3-haiku-20240307, ollama:llama3)
	ModelID string `yaml:"model_id" validate:"required"`

	// API key; may also come from the provider's environment variable
	APIKey string `yaml:"api_key,omitempty"`

	// Generation parameters
	Generation GenerationConfig `yaml:"generation,omitempty"`
}

// GenerationConfig holds text generation parameters. Temperature 0 is how
// operators pin selector behavior when reproducibility matters more than
// diversity.
type GenerationConfig struct {
	MaxTokens   int     `yaml:"max_tokens" validate:"min=1"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`
	TopP        float64 `yaml:"top_p" validate:"min=0,max=1"`
}

// EmbeddingConfig holds the embedding provider configuration.
type EmbeddingConfig struct {
	// Provider name; ollama is the reference embedding provider
	Provider string `yaml:"provider" validate:"required,oneof=ollama"`

	// Embedding model name (e.g. nomic-embed-text)
	ModelID string `yaml:"model_id" validate:"required"`

	// Base URL of the embedding endpoint
	BaseURL string `yaml:"base_url,omitempty"`
}

// MiningConfig controls the offline extraction phase.
type MiningConfig struct {
	// LLM attempts per record before giving up on a problem
	MaxRetries int `yaml:"max_retries" validate:"min=1"`

	// Delay between attempts
	RetryBackoff time.Duration `yaml:"retry_backoff" validate:"min=0"`

	// Concurrent problems in the mining worker pool
	Workers int `yaml:"workers" validate:"min=1"`
}

// RetrievalConfig controls screening, selection and generalization.
type RetrievalConfig struct {
	// Shortlist size K for the embedding screener
	ShortlistK int `yaml:"shortlist_k" validate:"min=1"`

	// Abbreviated shortlist size used on selector retry
	AbbreviatedK int `yaml:"abbreviated_k" validate:"min=1"`

	// LLM attempts per selection/generalization before degrading
	MaxRetries int `yaml:"max_retries" validate:"min=1"`

	// Delay between attempts
	RetryBackoff time.Duration `yaml:"retry_backoff" validate:"min=0"`

	// Concurrent problems in the retrieval worker pool
	Workers int `yaml:"workers" validate:"min=1"`
}

// PathsConfig locates the on-disk artifacts the pipeline reads and writes.
type PathsConfig struct {
	// Record store JSON file (problem ID -> experience records)
	RecordStore string `yaml:"record_store,omitempty"`

	// Train/test issue-type side-files
	TrainIssueTypes string `yaml:"train_issue_types,omitempty"`
	TestIssueTypes  string `yaml:"test_issue_types,omitempty"`

	// Directory for per-run node cache files
	RunsDir string `yaml:"runs_dir,omitempty"`

	// SQLite embedding index file
	EmbeddingIndex string `yaml:"embedding_index,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Severity level (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Use ANSI colors on console output
	Color bool `yaml:"color,omitempty"`
}
