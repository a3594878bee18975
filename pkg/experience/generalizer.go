package experience

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// ExperienceMarker is the stable numbered marker wrapping each generalized
// guidance line, so downstream prompt assembly is mechanical concatenation.
// Consumers treat the block as opaque natural language.
const ExperienceMarker = "***Experience %d***: %s"

// Generalizer rewrites a selected record's content so its phrasing addresses
// the target problem. The perspective path runs once per target problem and
// is cached by the per-node cache; the modification ("polish") path runs
// fresh for every edit because it depends on mutable code state.
type Generalizer struct {
	perspective  *Predict
	modification *Predict
	genOpts      []core.GenerateOption
	attempts     int
	backoff      time.Duration
}

// GeneralizerOption customizes a Generalizer.
type GeneralizerOption func(*Generalizer)

// WithGeneralizerRetries sets the attempt budget.
func WithGeneralizerRetries(attempts int) GeneralizerOption {
	return func(g *Generalizer) {
		g.attempts = attempts
	}
}

// WithGeneralizerBackoff sets the inter-attempt delay.
func WithGeneralizerBackoff(d time.Duration) GeneralizerOption {
	return func(g *Generalizer) {
		g.backoff = d
	}
}

// WithGeneralizerGenerateOptions sets the generation parameters for both
// generalization paths.
func WithGeneralizerGenerateOptions(opts ...core.GenerateOption) GeneralizerOption {
	return func(g *Generalizer) {
		g.genOpts = opts
	}
}

// NewGeneralizer creates a generalizer over the given completion LLM.
func NewGeneralizer(llm core.LLM, opts ...GeneralizerOption) *Generalizer {
	g := &Generalizer{
		attempts: 3,
		backoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.perspective = NewPredict(perspectiveSignature(), llm, core.WithGenerateOptions(g.genOpts...))
	g.modification = NewPredict(modificationSignature(), llm, core.WithGenerateOptions(g.genOpts...))
	return g
}

// Perspective adapts each selected record into 1-3 sentences addressing the
// target issue and assembles the marked injection block. Source-specific
// identifiers are abstracted away unless plausibly present in the target.
func (g *Generalizer) Perspective(ctx context.Context, issueText string, records []Record) (string, error) {
	if len(records) == 0 {
		return "", errors.New(errors.InvalidInput, "no records to generalize")
	}

	var lines []string
	for i, rec := range records {
		inputs := map[string]any{
			"issue":      issueText,
			"experience": rec.Render(),
		}

		var guidance string
		adapt := func() error {
			outputs, err := g.perspective.Process(ctx, inputs)
			if err != nil {
				return err
			}
			guidance = strings.TrimSpace(outputString(outputs, "guidance"))
			if guidance == "" {
				return errors.New(errors.InvalidResponse, "generalizer returned empty guidance")
			}
			return nil
		}

		if err := withRetry(ctx, g.attempts, g.backoff, "perspective generalization", adapt); err != nil {
			return "", errors.Wrap(err, errors.GeneralizationFailed, "perspective generalization failed after retries")
		}
		lines = append(lines, fmt.Sprintf(ExperienceMarker, i+1, guidance))
	}

	return strings.Join(lines, "\n"), nil
}

// Modification rewrites a pending edit instruction to incorporate the
// records' lessons while staying concrete for this exact edit. On failure
// after retries the unmodified original instruction is returned along with
// the error, so callers degrade without blocking the agent.
func (g *Generalizer) Modification(ctx context.Context, issueText string, records []Record, codeContext, instruction string) (string, error) {
	if instruction == "" {
		return "", errors.New(errors.InvalidInput, "pending edit instruction is required")
	}
	if len(records) == 0 {
		return instruction, errors.New(errors.InvalidInput, "no records to generalize")
	}

	rendered := make([]string, len(records))
	for i, rec := range records {
		rendered[i] = rec.Render()
	}

	inputs := map[string]any{
		"issue":        issueText,
		"experience":   strings.Join(rendered, "\n---\n"),
		"code_context": codeContext,
		"instruction":  instruction,
	}

	var enhanced string
	polish := func() error {
		outputs, err := g.modification.Process(ctx, inputs)
		if err != nil {
			return err
		}
		enhanced = strings.TrimSpace(outputString(outputs, "enhanced_instruction"))
		if enhanced == "" {
			return errors.New(errors.InvalidResponse, "generalizer returned empty instruction")
		}
		return nil
	}

	if err := withRetry(ctx, g.attempts, g.backoff, "modification generalization", polish); err != nil {
		return instruction, errors.Wrap(err, errors.GeneralizationFailed, "modification generalization failed after retries")
	}
	return enhanced, nil
}
