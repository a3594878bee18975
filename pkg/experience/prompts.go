package experience

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
)

// Prompt assembly and completion parsing for the extraction, selection and
// generalization modules. Prompts are built from core.Signature field lists
// and completions are recovered by scanning for each output field's prefix,
// so every module's LLM contract stays mechanical and reparse-friendly.

func minerSuccessSignature() core.Signature {
	return core.NewSignature(
		[]core.InputField{
			{Field: core.NewField("issue", core.WithDescription("the original issue description"))},
			{Field: core.NewField("trajectory", core.WithDescription("the ordered action log of the solving attempt"))},
			{Field: core.NewField("patch", core.WithDescription("the generated patch that resolved the issue"))},
		},
		[]core.OutputField{
			{Field: core.NewField("perspective", core.WithDescription("The correct understanding of the issue that led to the fix."))},
			{Field: core.NewField("entry_point", core.WithDescription("The first code element correctly identified as relevant."))},
			{Field: core.NewField("entry_reason", core.WithDescription("Why that code element was the right starting point."))},
			{Field: core.NewField("modification", core.WithDescription("The abstract pattern or principle behind the correct change."))},
		},
	).WithInstruction(`The attempt below resolved the issue. Distill why it worked:
describe the correct understanding of the issue, name the first code element
that was correctly identified as relevant and why, and state the abstract
pattern behind the correct change so it can transfer to other problems.`)
}

func minerFailureSignature() core.Signature {
	return core.NewSignature(
		[]core.InputField{
			{Field: core.NewField("issue", core.WithDescription("the original issue description"))},
			{Field: core.NewField("trajectory", core.WithDescription("the ordered action log of the failed attempt"))},
			{Field: core.NewField("generated_patch", core.WithDescription("the incorrect patch the attempt produced"))},
			{Field: core.NewField("reference_patch", core.WithDescription("the known-correct patch"))},
		},
		[]core.OutputField{
			{Field: core.NewField("perspective_reflections", core.WithDescription("Exactly three numbered reflections on how the issue was misunderstood."))},
			{Field: core.NewField("positioning_reflections", core.WithDescription("Exactly three numbered reflections on how the wrong location was focused on."))},
			{Field: core.NewField("modification_reflections", core.WithDescription("Exactly three numbered reflections on how the modification approach was wrong."))},
		},
	).WithInstruction(`The attempt below failed to resolve the issue. Compare the generated patch
against the reference patch and produce exactly three independent reflections
in each category: misunderstanding of the issue, wrong location focus, and
wrong modification approach. Phrase every reflection abstractly, as a warning
sign that could fire on a different problem; never name classes, functions or
files from this specific instance. Number each reflection 1-3 on its own line.`)
}

func selectorSignature() core.Signature {
	return core.NewSignature(
		[]core.InputField{
			{Field: core.NewField("issue", core.WithDescription("the new problem's issue description"))},
			{Field: core.NewField("candidates", core.WithDescription("the shortlisted experience records with similarity scores"))},
		},
		[]core.OutputField{
			{Field: core.NewField("selected", core.WithDescription("The number of the single best candidate, as a bare integer."))},
			{Field: core.NewField("rationale", core.WithDescription("A short justification for the choice."))},
		},
	).WithInstruction(`Pick exactly one candidate experience whose lesson best transfers to the new
issue. In priority order: (1) prefer root-cause and domain similarity over
superficial symptom similarity; (2) prefer a lesson that transfers, not one
that merely touches the same subsystem; (3) avoid a candidate whose advice
would bias toward an overly complex fix when a simpler one is plausible.`)
}

// generalizerBase carries the two inputs shared by both generalization
// paths; each path extends it with its own fields.
func generalizerBase() core.Signature {
	return core.NewSignature(
		[]core.InputField{
			{Field: core.NewField("issue", core.WithDescription("the new problem's issue description"))},
			{Field: core.NewField("experience", core.WithDescription("the selected experience record"))},
		},
		nil,
	)
}

func perspectiveSignature() core.Signature {
	return generalizerBase().
		PrependOutput("guidance", "guidance:",
			"One to three sentences of adapted guidance addressing the new issue.").
		WithInstruction(`Rewrite the experience so its guidance directly addresses the new issue's
situation. Abstract away any class, function or file names from the source
experience unless they plausibly exist in the new issue's codebase too; speak
in the new issue's own terms. Keep it to 1-3 sentences.`)
}

func modificationSignature() core.Signature {
	return generalizerBase().
		AppendInput("code_context", "code_context:", "the code currently visible at this decision point").
		AppendInput("instruction", "instruction:", "the pending edit instruction").
		PrependOutput("enhanced_instruction", "enhanced_instruction:",
			"The rewritten edit instruction incorporating the experience's lessons.").
		WithInstruction(`Rewrite the pending edit instruction so it incorporates the lessons of the
experience while staying a concrete, actionable instruction for this exact
edit in this code context. Typical lessons: keep the change minimal and
localized, place new imports at module scope, do not modify unrelated
subsystems. Never turn the instruction into abstract advice.`)
}

// formatPrompt assembles the prompt for a signature and its inputs. Output
// fields are announced with their prefixes so the completion can be parsed
// back by section scanning.
func formatPrompt(signature core.Signature, inputs map[string]string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Given the fields '%s', produce the fields '%s'.\n\n",
		joinInputNames(signature.Inputs),
		joinOutputNames(signature.Outputs),
	)

	for _, field := range signature.Outputs {
		if field.Prefix != "" {
			fmt.Fprintf(&sb, "The %s field should start with '%s' followed by the content on new lines.\n",
				field.Name, field.Prefix)
		}
		if field.Description != "" {
			fmt.Fprintf(&sb, " %s\n", field.Description)
		}
	}
	sb.WriteString("\n")

	if signature.Instruction != "" {
		sb.WriteString(signature.Instruction + "\n\n")
	}

	sb.WriteString("---\n\n")
	for _, field := range signature.Inputs {
		fmt.Fprintf(&sb, "%s: %s\n", field.Name, inputs[field.Name])
	}

	return sb.String()
}

// parseCompletion recovers output fields by scanning the completion for each
// field's prefix and collecting the lines that follow until the next prefix.
func parseCompletion(completion string, signature core.Signature) map[string]string {
	type section struct {
		content []string
	}
	sections := make(map[string]*section)
	for _, field := range signature.Outputs {
		sections[field.Name] = &section{}
	}

	var current *section
	for _, raw := range strings.Split(completion, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		foundNewSection := false
		for _, field := range signature.Outputs {
			prefix := strings.TrimSpace(field.Prefix)
			if prefix == "" || !strings.HasPrefix(strings.ToLower(line), strings.ToLower(prefix)) {
				continue
			}
			current = sections[field.Name]
			if rest := strings.TrimSpace(line[len(prefix):]); rest != "" {
				current.content = append(current.content, rest)
			}
			foundNewSection = true
			break
		}

		if !foundNewSection && current != nil {
			current.content = append(current.content, line)
		}
	}

	outputs := make(map[string]string)
	for name, sec := range sections {
		if len(sec.content) > 0 {
			outputs[name] = strings.TrimSpace(strings.Join(sec.content, "\n"))
		}
	}
	return outputs
}

// splitNumbered parses a "1. ... 2. ... 3. ..." block into its items.
// Unnumbered continuation lines attach to the preceding item.
func splitNumbered(block string) []string {
	var items []string
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) > 1 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			items = append(items, strings.TrimSpace(line[2:]))
			continue
		}
		if len(items) > 0 {
			items[len(items)-1] = items[len(items)-1] + " " + line
		}
	}
	return items
}

func joinInputNames(fields []core.InputField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func joinOutputNames(fields []core.OutputField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
