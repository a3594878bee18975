package experience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/swexp-go/internal/testutil"
	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

func TestPredict_Process(t *testing.T) {
	llm := testutil.NewFakeLLM("guidance: keep the change minimal and localized")
	mod := NewPredict(perspectiveSignature(), llm)

	outputs, err := mod.Process(context.Background(), map[string]any{
		"issue":      "ordering breaks after slicing",
		"experience": "a rendered record",
	})
	require.NoError(t, err)
	assert.Equal(t, "keep the change minimal and localized", outputs["guidance"])
	assert.Equal(t, 1, llm.GenerateCalls())
}

func TestPredict_MissingInputRejected(t *testing.T) {
	llm := testutil.NewFakeLLM("guidance: unused")
	mod := NewPredict(perspectiveSignature(), llm)

	_, err := mod.Process(context.Background(), map[string]any{"issue": "only one input"})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
	assert.Equal(t, 0, llm.GenerateCalls())
}

func TestPredict_AbsentOutputIsNil(t *testing.T) {
	llm := testutil.NewFakeLLM("selected: 2")
	mod := NewPredict(selectorSignature(), llm)

	outputs, err := mod.Process(context.Background(), map[string]any{
		"issue":      "an issue",
		"candidates": "Candidate 1 ...",
	})
	require.NoError(t, err)
	assert.Equal(t, "2", outputs["selected"])
	assert.Nil(t, outputs["rationale"])
}

func TestPredict_DefaultGenerateOptionsReachLLM(t *testing.T) {
	llm := new(testutil.MockLLM)
	llm.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(opts []core.GenerateOption) bool {
		return len(opts) == 2
	})).Return("guidance: adapted", nil)

	mod := NewPredict(perspectiveSignature(), llm,
		core.WithGenerateOptions(core.WithMaxTokens(512), core.WithTemperature(0)))

	outputs, err := mod.Process(context.Background(), map[string]any{
		"issue":      "an issue",
		"experience": "a record",
	})
	require.NoError(t, err)
	assert.Equal(t, "adapted", outputs["guidance"])
	llm.AssertExpectations(t)
}

func TestPredict_PerCallOptionsMergeWithDefaults(t *testing.T) {
	llm := new(testutil.MockLLM)
	llm.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(opts []core.GenerateOption) bool {
		return len(opts) == 2
	})).Return("guidance: adapted", nil)

	mod := NewPredict(perspectiveSignature(), llm,
		core.WithGenerateOptions(core.WithMaxTokens(512)))

	_, err := mod.Process(context.Background(), map[string]any{
		"issue":      "an issue",
		"experience": "a record",
	}, core.WithGenerateOptions(core.WithTemperature(0)))
	require.NoError(t, err)
	llm.AssertExpectations(t)
}

func TestPredict_Clone(t *testing.T) {
	llm := testutil.NewFakeLLM("guidance: original")
	mod := NewPredict(perspectiveSignature(), llm, core.WithGenerateOptions(core.WithMaxTokens(512)))

	clone, ok := mod.Clone().(*Predict)
	require.True(t, ok)
	assert.Equal(t, mod.GetSignature(), clone.GetSignature())

	// The clone talks to the same model but carries its own options.
	other := testutil.NewFakeLLM("guidance: swapped")
	clone.SetLLM(other)

	outputs, err := clone.Process(context.Background(), map[string]any{
		"issue":      "an issue",
		"experience": "a record",
	})
	require.NoError(t, err)
	assert.Equal(t, "swapped", outputs["guidance"])
	assert.Equal(t, 0, llm.GenerateCalls())
}
