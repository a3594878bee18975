package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	// Test ModelID
	ctxWithModel := WithModelID(ctx, "test-model")
	retrievedModelID, ok := GetModelID(ctxWithModel)
	assert.True(t, ok)
	assert.Equal(t, "test-model", retrievedModelID)

	// Test TokenInfo
	tokenInfo := &TokenInfo{
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
	}
	ctxWithToken := WithTokenInfo(ctx, tokenInfo)
	retrievedTokenInfo, ok := GetTokenInfo(ctxWithToken)
	assert.True(t, ok)
	assert.Equal(t, tokenInfo, retrievedTokenInfo)

	// Test ProblemID and RunID
	ctxWithProblem := WithProblemID(ctx, "sympy__sympy-13439")
	problemID, ok := GetProblemID(ctxWithProblem)
	assert.True(t, ok)
	assert.Equal(t, "sympy__sympy-13439", problemID)

	ctxWithRun := WithRunID(ctx, "c2a9")
	runID, ok := GetRunID(ctxWithRun)
	assert.True(t, ok)
	assert.Equal(t, "c2a9", runID)

	// Test invalid context values
	_, ok = GetModelID(ctx)
	assert.False(t, ok)
	_, ok = GetTokenInfo(ctx)
	assert.False(t, ok)
	_, ok = GetProblemID(ctx)
	assert.False(t, ok)
	_, ok = GetRunID(ctx)
	assert.False(t, ok)
}
