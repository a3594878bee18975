package experience

import (
	"context"
	"time"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// Miner converts a finished trajectory plus its verdict into one experience
// record via guided LLM extraction. Malformed completions are reparsed up to
// the retry budget; exhausting it is a terminal extraction failure for that
// problem, not for the batch.
type Miner struct {
	success  *Predict
	failure  *Predict
	genOpts  []core.GenerateOption
	attempts int
	backoff  time.Duration
}

// MinerOption customizes a Miner.
type MinerOption func(*Miner)

// WithMinerRetries sets the attempt budget.
func WithMinerRetries(attempts int) MinerOption {
	return func(m *Miner) {
		m.attempts = attempts
	}
}

// WithMinerBackoff sets the inter-attempt delay.
func WithMinerBackoff(d time.Duration) MinerOption {
	return func(m *Miner) {
		m.backoff = d
	}
}

// WithMinerGenerateOptions sets the generation parameters for extraction calls.
func WithMinerGenerateOptions(opts ...core.GenerateOption) MinerOption {
	return func(m *Miner) {
		m.genOpts = opts
	}
}

// NewMiner creates a miner over the given completion LLM.
func NewMiner(llm core.LLM, opts ...MinerOption) *Miner {
	m := &Miner{
		attempts: 3,
		backoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.success = NewPredict(minerSuccessSignature(), llm, core.WithGenerateOptions(m.genOpts...))
	m.failure = NewPredict(minerFailureSignature(), llm, core.WithGenerateOptions(m.genOpts...))
	return m
}

// MineInput bundles everything extraction needs for one problem. The
// reference patch is required only when the verdict is not-resolved.
type MineInput struct {
	ProblemID      string
	IssueText      string
	Trajectory     *datasets.Trajectory
	GeneratedPatch string
	ReferencePatch string
	Verdict        datasets.Verdict
}

// Mine extracts one record. The verdict selects the extraction mode: success
// distills why the attempt worked, failure contrasts the generated patch with
// the reference patch into three reflections per category.
func (m *Miner) Mine(ctx context.Context, in MineInput) (*Record, error) {
	if in.ProblemID == "" || in.IssueText == "" || in.Trajectory == nil {
		return nil, errors.New(errors.InvalidInput, "mining requires problem ID, issue text and trajectory")
	}
	if !in.Verdict.Resolved && in.ReferencePatch == "" {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "failure-mode extraction requires a reference patch"),
			errors.Fields{"problem_id": in.ProblemID})
	}

	var record *Record
	extract := func() error {
		var err error
		if in.Verdict.Resolved {
			record, err = m.extractSuccess(ctx, in)
		} else {
			record, err = m.extractFailure(ctx, in)
		}
		return err
	}

	err := withRetry(ctx, m.attempts, m.backoff, "experience extraction", extract)
	if err != nil {
		logging.GetLogger().Warn(ctx, "extraction exhausted retries for %s: %v", in.ProblemID, err)
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ExtractionFailed, "extraction failed after retries"),
			errors.Fields{"problem_id": in.ProblemID})
	}
	return record, nil
}

func (m *Miner) extractSuccess(ctx context.Context, in MineInput) (*Record, error) {
	outputs, err := m.success.Process(ctx, map[string]any{
		"issue":      in.IssueText,
		"trajectory": in.Trajectory.Render(),
		"patch":      in.GeneratedPatch,
	})
	if err != nil {
		return nil, err
	}

	record := &Record{
		Flag:         FlagSuccess,
		Perspective:  outputString(outputs, "perspective"),
		Modification: outputString(outputs, "modification"),
		EntryPoint: &EntryPoint{
			Element: outputString(outputs, "entry_point"),
			Reason:  outputString(outputs, "entry_reason"),
		},
		SourceIssue:   in.IssueText,
		VerdictSource: in.Verdict.Source,
	}
	if err := record.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "success extraction did not parse")
	}
	return record, nil
}

func (m *Miner) extractFailure(ctx context.Context, in MineInput) (*Record, error) {
	outputs, err := m.failure.Process(ctx, map[string]any{
		"issue":           in.IssueText,
		"trajectory":      in.Trajectory.Render(),
		"generated_patch": in.GeneratedPatch,
		"reference_patch": in.ReferencePatch,
	})
	if err != nil {
		return nil, err
	}

	record := &Record{
		Flag:                    FlagFailed,
		PerspectiveReflections:  splitNumbered(outputString(outputs, "perspective_reflections")),
		PositioningReflections:  splitNumbered(outputString(outputs, "positioning_reflections")),
		ModificationReflections: splitNumbered(outputString(outputs, "modification_reflections")),
		SourceIssue:             in.IssueText,
		VerdictSource:           in.Verdict.Source,
	}
	if err := record.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failure extraction did not parse")
	}
	return record, nil
}
