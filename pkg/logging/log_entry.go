package logging

import "context"

// LogEntry represents a structured log record with fields particularly relevant to LLM operations
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// LLM-specific fields
	ModelID   string     // The LLM model being used
	TokenInfo *TokenInfo // Token usage information
	Latency   int64      // Operation duration in milliseconds

	// Pipeline identity fields
	ProblemID string // Benchmark problem being processed
	RunID     string // Search-tree run this entry belongs to

	// General structured data
	Fields map[string]interface{}
}

// TokenInfo tracks token usage for cost and performance monitoring
type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type modelIDKey struct{}
type tokenInfoKey struct{}
type problemIDKey struct{}
type runIDKey struct{}

// WithModelID annotates a context with the model serving subsequent calls.
func WithModelID(ctx context.Context, modelID string) context.Context {
	return context.WithValue(ctx, modelIDKey{}, modelID)
}

// GetModelID retrieves the model ID from context, if set.
func GetModelID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(modelIDKey{}).(string)
	return v, ok
}

// WithTokenInfo annotates a context with token usage for the current operation.
func WithTokenInfo(ctx context.Context, info *TokenInfo) context.Context {
	return context.WithValue(ctx, tokenInfoKey{}, info)
}

// GetTokenInfo retrieves token usage from context, if set.
func GetTokenInfo(ctx context.Context) (*TokenInfo, bool) {
	v, ok := ctx.Value(tokenInfoKey{}).(*TokenInfo)
	return v, ok
}

// WithProblemID annotates a context with the benchmark problem being processed.
func WithProblemID(ctx context.Context, problemID string) context.Context {
	return context.WithValue(ctx, problemIDKey{}, problemID)
}

// GetProblemID retrieves the problem ID from context, if set.
func GetProblemID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(problemIDKey{}).(string)
	return v, ok
}

// WithRunID annotates a context with the search-tree run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// GetRunID retrieves the run ID from context, if set.
func GetRunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey{}).(string)
	return v, ok
}
