package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	t.Run("NewField with defaults", func(t *testing.T) {
		field := NewField("test")
		assert.Equal(t, "test", field.Name)
		assert.Equal(t, "test:", field.Prefix)
		assert.Empty(t, field.Description)
	})

	t.Run("NewField with options", func(t *testing.T) {
		field := NewField("test",
			WithDescription("test description"),
			WithCustomPrefix("custom:"),
		)
		assert.Equal(t, "test", field.Name)
		assert.Equal(t, "custom:", field.Prefix)
		assert.Equal(t, "test description", field.Description)
	})

	t.Run("NewField with no prefix", func(t *testing.T) {
		field := NewField("test", WithNoPrefix())
		assert.Equal(t, "test", field.Name)
		assert.Empty(t, field.Prefix)
	})
}

func TestSignature(t *testing.T) {
	t.Run("NewSignature", func(t *testing.T) {
		inputs := []InputField{
			{Field: Field{Name: "issue"}},
			{Field: Field{Name: "trajectory"}},
		}
		outputs := []OutputField{
			{Field: Field{Name: "perspective"}},
			{Field: Field{Name: "modification"}},
		}

		sig := NewSignature(inputs, outputs)
		assert.Equal(t, inputs, sig.Inputs)
		assert.Equal(t, outputs, sig.Outputs)
		assert.Empty(t, sig.Instruction)
	})

	t.Run("WithInstruction", func(t *testing.T) {
		sig := NewSignature(nil, nil)
		sigWithInst := sig.WithInstruction("test instruction")
		assert.Equal(t, "test instruction", sigWithInst.Instruction)
	})

	t.Run("String representation", func(t *testing.T) {
		sig := NewSignature(
			[]InputField{{Field: NewField("issue", WithDescription("issue text"))}},
			[]OutputField{{Field: NewField("perspective", WithDescription("adapted guidance"))}},
		).WithInstruction("test instruction")

		str := sig.String()
		assert.Contains(t, str, "Inputs:")
		assert.Contains(t, str, "issue (issue text)")
		assert.Contains(t, str, "Outputs:")
		assert.Contains(t, str, "perspective (adapted guidance)")
		assert.Contains(t, str, "Instruction: test instruction")
	})
}

func TestSignatureAppendInput(t *testing.T) {
	t.Run("AppendInput basic functionality", func(t *testing.T) {
		sig := NewSignature(
			[]InputField{{Field: Field{Name: "issue"}}},
			[]OutputField{{Field: Field{Name: "selection"}}},
		)

		newSig := sig.AppendInput("shortlist", "Shortlist:", "ranked candidates")

		// Original unchanged
		assert.Len(t, sig.Inputs, 1)
		assert.Equal(t, "issue", sig.Inputs[0].Name)

		assert.Len(t, newSig.Inputs, 2)
		assert.Equal(t, "issue", newSig.Inputs[0].Name)
		assert.Equal(t, "shortlist", newSig.Inputs[1].Name)
		assert.Equal(t, "Shortlist:", newSig.Inputs[1].Prefix)
		assert.Equal(t, "ranked candidates", newSig.Inputs[1].Description)

		assert.Equal(t, sig.Outputs, newSig.Outputs)
	})

	t.Run("AppendInput multiple times", func(t *testing.T) {
		sig := NewSignature(
			[]InputField{{Field: Field{Name: "issue"}}},
			[]OutputField{{Field: Field{Name: "out"}}},
		)

		M := 3
		modified := sig
		for i := 0; i < M; i++ {
			modified = modified.AppendInput(
				fmt.Sprintf("reflection_%d", i+1),
				fmt.Sprintf("Reflection #%d:", i+1),
				"",
			)
		}

		assert.Len(t, modified.Inputs, 4)
		assert.Equal(t, "issue", modified.Inputs[0].Name)
		assert.Equal(t, "reflection_1", modified.Inputs[1].Name)
		assert.Equal(t, "Reflection #3:", modified.Inputs[3].Prefix)
	})

	t.Run("AppendInput preserves instruction", func(t *testing.T) {
		sig := NewSignature(nil, nil).WithInstruction("Original instruction")
		newSig := sig.AppendInput("extra", "prefix", "desc")

		assert.Equal(t, "Original instruction", newSig.Instruction)
	})
}

func TestSignaturePrependOutput(t *testing.T) {
	t.Run("PrependOutput basic functionality", func(t *testing.T) {
		sig := NewSignature(
			[]InputField{{Field: Field{Name: "issue"}}},
			[]OutputField{{Field: Field{Name: "selection"}}},
		)

		newSig := sig.PrependOutput("rationale", "Rationale:", "why this record")

		// Original unchanged
		assert.Len(t, sig.Outputs, 1)
		assert.Equal(t, "selection", sig.Outputs[0].Name)

		assert.Len(t, newSig.Outputs, 2)
		assert.Equal(t, "rationale", newSig.Outputs[0].Name)
		assert.Equal(t, "selection", newSig.Outputs[1].Name)
		assert.Equal(t, "Rationale:", newSig.Outputs[0].Prefix)

		assert.Equal(t, sig.Inputs, newSig.Inputs)
	})

	t.Run("PrependOutput multiple times", func(t *testing.T) {
		sig := NewSignature(
			[]InputField{{Field: Field{Name: "in"}}},
			[]OutputField{{Field: Field{Name: "out1"}}},
		)

		newSig := sig.
			PrependOutput("out2", "Out2:", "").
			PrependOutput("out3", "Out3:", "")

		assert.Len(t, newSig.Outputs, 3)
		assert.Equal(t, "out3", newSig.Outputs[0].Name) // Most recently prepended
		assert.Equal(t, "out2", newSig.Outputs[1].Name)
		assert.Equal(t, "out1", newSig.Outputs[2].Name)
	})

	t.Run("PrependOutput preserves instruction", func(t *testing.T) {
		sig := NewSignature(nil, nil).WithInstruction("Original instruction")
		newSig := sig.PrependOutput("extra", "prefix", "desc")

		assert.Equal(t, "Original instruction", newSig.Instruction)
	})
}
