package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrompt(t *testing.T) {
	signature := selectorSignature()
	prompt := formatPrompt(signature, map[string]string{
		"issue":      "XOR parity in boolean combination",
		"candidates": "Candidate 1 ...",
	})

	assert.Contains(t, prompt, "Given the fields 'issue, candidates', produce the fields 'selected, rationale'.")
	assert.Contains(t, prompt, "should start with 'selected:'")
	assert.Contains(t, prompt, "root-cause and domain similarity")
	assert.Contains(t, prompt, "issue: XOR parity in boolean combination")
}

func TestParseCompletion(t *testing.T) {
	signature := selectorSignature()
	completion := `selected: 2
rationale: shares the same root cause
and transfers cleanly`

	fields := parseCompletion(completion, signature)
	assert.Equal(t, "2", fields["selected"])
	assert.Equal(t, "shares the same root cause\nand transfers cleanly", fields["rationale"])
}

func TestParseCompletion_CaseInsensitivePrefix(t *testing.T) {
	signature := perspectiveSignature()
	fields := parseCompletion("Guidance: focus on parity, not aggregation", signature)
	assert.Equal(t, "focus on parity, not aggregation", fields["guidance"])
}

func TestParseCompletion_MissingField(t *testing.T) {
	signature := selectorSignature()
	fields := parseCompletion("rationale: no pick given", signature)
	_, ok := fields["selected"]
	assert.False(t, ok)
}

func TestSplitNumbered(t *testing.T) {
	items := splitNumbered(`1. first reflection
2. second reflection
spanning two lines
3) third reflection`)
	require.Len(t, items, 3)
	assert.Equal(t, "first reflection", items[0])
	assert.Equal(t, "second reflection spanning two lines", items[1])
	assert.Equal(t, "third reflection", items[2])
}

func TestSplitNumbered_Empty(t *testing.T) {
	assert.Empty(t, splitNumbered(""))
	assert.Empty(t, splitNumbered("no numbering at all"))
}
