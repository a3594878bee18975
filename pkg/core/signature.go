package core

import (
	"fmt"
	"strings"
)

// Field represents a single field in a signature.
type Field struct {
	Name        string
	Description string
	Prefix      string
}

// FieldOption customizes a field at construction time.
type FieldOption func(*Field)

// WithDescription sets the field description shown in prompt instructions.
func WithDescription(desc string) FieldOption {
	return func(f *Field) {
		f.Description = desc
	}
}

// WithCustomPrefix overrides the default "name:" output prefix.
func WithCustomPrefix(prefix string) FieldOption {
	return func(f *Field) {
		f.Prefix = prefix
	}
}

// WithNoPrefix removes the output prefix entirely.
func WithNoPrefix() FieldOption {
	return func(f *Field) {
		f.Prefix = ""
	}
}

// NewField creates a field with a default "name:" prefix.
func NewField(name string, opts ...FieldOption) Field {
	f := Field{
		Name:   name,
		Prefix: name + ":",
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// InputField represents an input field.
type InputField struct {
	Field
}

// OutputField represents an output field.
type OutputField struct {
	Field
}

// Signature represents the input and output specification of a module.
type Signature struct {
	Inputs      []InputField
	Outputs     []OutputField
	Instruction string
}

// NewSignature creates a new Signature with the given inputs and outputs.
func NewSignature(inputs []InputField, outputs []OutputField) Signature {
	return Signature{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// WithInstruction adds an instruction to the Signature.
func (s Signature) WithInstruction(instruction string) Signature {
	s.Instruction = instruction
	return s
}

// AppendInput returns a copy of the signature with one more input field.
// The receiver is left unchanged.
func (s Signature) AppendInput(name, prefix, description string) Signature {
	newInputs := make([]InputField, len(s.Inputs), len(s.Inputs)+1)
	copy(newInputs, s.Inputs)
	newInputs = append(newInputs, InputField{
		Field: Field{Name: name, Prefix: prefix, Description: description},
	})
	s.Inputs = newInputs
	return s
}

// PrependOutput returns a copy of the signature with a new leading output
// field. The receiver is left unchanged.
func (s Signature) PrependOutput(name, prefix, description string) Signature {
	newOutputs := make([]OutputField, 0, len(s.Outputs)+1)
	newOutputs = append(newOutputs, OutputField{
		Field: Field{Name: name, Prefix: prefix, Description: description},
	})
	newOutputs = append(newOutputs, s.Outputs...)
	s.Outputs = newOutputs
	return s
}

// String returns a string representation of the Signature.
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteString("Inputs:\n")
	for _, input := range s.Inputs {
		sb.WriteString(fmt.Sprintf("  - %s (%s)\n", input.Name, input.Description))
	}
	sb.WriteString("Outputs:\n")
	for _, output := range s.Outputs {
		sb.WriteString(fmt.Sprintf("  - %s (%s)\n", output.Name, output.Description))
	}
	if s.Instruction != "" {
		sb.WriteString(fmt.Sprintf("Instruction: %s\n", s.Instruction))
	}
	return sb.String()
}
