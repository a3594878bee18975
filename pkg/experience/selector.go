package experience

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// Selection records which single candidate was chosen for a query problem,
// with the model's rationale. Ephemeral; it survives only in logs.
type Selection struct {
	Index     int
	ProblemID string
	Record    Record
	Rationale string
}

// Selector asks an LLM to pick exactly one record from the screener's
// shortlist. A parse failure retries against an abbreviated shortlist; a
// persistent failure degrades the caller to zero injected experience rather
// than blocking the agent run. LLM choice is not deterministic across runs.
type Selector struct {
	module       *Predict
	genOpts      []core.GenerateOption
	attempts     int
	backoff      time.Duration
	abbreviatedK int
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithSelectorRetries sets the attempt budget.
func WithSelectorRetries(attempts int) SelectorOption {
	return func(s *Selector) {
		s.attempts = attempts
	}
}

// WithSelectorBackoff sets the inter-attempt delay.
func WithSelectorBackoff(d time.Duration) SelectorOption {
	return func(s *Selector) {
		s.backoff = d
	}
}

// WithAbbreviatedK sets the shortlist size used after a parse failure.
func WithAbbreviatedK(k int) SelectorOption {
	return func(s *Selector) {
		if k > 0 {
			s.abbreviatedK = k
		}
	}
}

// WithSelectorGenerateOptions sets the generation parameters for selection calls.
func WithSelectorGenerateOptions(opts ...core.GenerateOption) SelectorOption {
	return func(s *Selector) {
		s.genOpts = opts
	}
}

// NewSelector creates a selector over the given completion LLM.
func NewSelector(llm core.LLM, opts ...SelectorOption) *Selector {
	s := &Selector{
		attempts:     3,
		backoff:      2 * time.Second,
		abbreviatedK: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.module = NewPredict(selectorSignature(), llm, core.WithGenerateOptions(s.genOpts...))
	return s
}

// Select picks exactly one candidate. A single-candidate shortlist is chosen
// trivially without a model call.
func (s *Selector) Select(ctx context.Context, issueText string, candidates []Candidate) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, errors.New(errors.SelectionFailed, "empty shortlist")
	}
	if len(candidates) == 1 {
		return &Selection{
			Index:     0,
			ProblemID: candidates[0].ProblemID,
			Record:    candidates[0].Record,
			Rationale: "only candidate in shortlist",
		}, nil
	}

	logger := logging.GetLogger()
	pool := candidates
	attempt := 0

	var selection *Selection
	pick := func() error {
		attempt++
		// After the first parse failure, retry against the abbreviated
		// top of the shortlist.
		if attempt > 1 && len(pool) > s.abbreviatedK {
			pool = pool[:s.abbreviatedK]
		}

		sel, err := s.pickOnce(ctx, issueText, pool)
		if err != nil {
			return err
		}
		selection = sel
		return nil
	}

	if err := withRetry(ctx, s.attempts, s.backoff, "experience selection", pick); err != nil {
		return nil, errors.Wrap(err, errors.SelectionFailed, "selection failed after retries")
	}

	logger.Info(ctx, "selected experience from %s: %s", selection.ProblemID, selection.Rationale)
	return selection, nil
}

func (s *Selector) pickOnce(ctx context.Context, issueText string, pool []Candidate) (*Selection, error) {
	outputs, err := s.module.Process(ctx, map[string]any{
		"issue":      issueText,
		"candidates": renderCandidates(pool),
	})
	if err != nil {
		return nil, err
	}

	idx, err := parseSelectedIndex(outputString(outputs, "selected"), len(pool))
	if err != nil {
		return nil, err
	}

	return &Selection{
		Index:     idx,
		ProblemID: pool[idx].ProblemID,
		Record:    pool[idx].Record,
		Rationale: strings.TrimSpace(outputString(outputs, "rationale")),
	}, nil
}

// renderCandidates formats the shortlist with similarity scores; the scores
// are shown to the model as an additional signal.
func renderCandidates(pool []Candidate) string {
	var sb strings.Builder
	for i, c := range pool {
		fmt.Fprintf(&sb, "Candidate %d (similarity %.4f, from %s):\n", i+1, c.Score, c.ProblemID)
		sb.WriteString(c.Record.Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseSelectedIndex recovers the 1-based candidate number from the model's
// output and converts it to a 0-based index.
func parseSelectedIndex(raw string, poolSize int) (int, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return 0, errors.New(errors.InvalidResponse, "selector returned no candidate number")
	}
	// Tolerate "Candidate 3" and trailing prose; take the first integer.
	fieldsOf := strings.FieldsFunc(token, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fieldsOf) == 0 {
		return 0, errors.WithFields(
			errors.New(errors.InvalidResponse, "selector output holds no candidate number"),
			errors.Fields{"output": token})
	}
	n, err := strconv.Atoi(fieldsOf[0])
	if err != nil {
		return 0, errors.Wrap(err, errors.InvalidResponse, "selector output is not a number")
	}
	if n < 1 || n > poolSize {
		return 0, errors.WithFields(
			errors.New(errors.InvalidResponse, "selected candidate out of range"),
			errors.Fields{"selected": n, "pool_size": poolSize})
	}
	return n - 1, nil
}
