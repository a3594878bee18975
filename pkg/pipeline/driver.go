// Package pipeline is the outer driver for the experience subsystem. It runs
// the offline mining phase over finished trajectories, enforces the
// train/test leakage gate, and hands out per-problem retrieval sessions that
// own the screen, select, generalize and inject sequence for one agent run.
// Mining always fully precedes retrieval against a store; the two phases are
// separate methods and never interleave on the same driver.
package pipeline

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/swexp-go/pkg/config"
	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/experience"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// DefaultWorkers bounds concurrent problems in both phase pools.
const DefaultWorkers = 3

// Driver wires the experience components together for batch operation.
type Driver struct {
	store       *experience.Store
	miner       *experience.Miner
	screener    *experience.Screener
	selector    *experience.Selector
	generalizer *experience.Generalizer
	runsDir     string
	workers     int
}

// Option customizes a Driver.
type Option func(*Driver)

// WithWorkers bounds the phase worker pools.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRunsDir sets the root directory for per-run cache files.
func WithRunsDir(dir string) Option {
	return func(d *Driver) {
		d.runsDir = dir
	}
}

// WithMiner overrides the default miner.
func WithMiner(m *experience.Miner) Option {
	return func(d *Driver) {
		d.miner = m
	}
}

// WithScreener overrides the default screener.
func WithScreener(s *experience.Screener) Option {
	return func(d *Driver) {
		d.screener = s
	}
}

// WithSelector overrides the default selector.
func WithSelector(s *experience.Selector) Option {
	return func(d *Driver) {
		d.selector = s
	}
}

// WithGeneralizer overrides the default generalizer.
func WithGeneralizer(g *experience.Generalizer) Option {
	return func(d *Driver) {
		d.generalizer = g
	}
}

// New creates a driver over a completion LLM, the fixed embedding model and a
// record store. The store may start empty (mining populates it) or be loaded
// from disk (retrieval-only use).
func New(llm, embedder core.LLM, store *experience.Store, opts ...Option) *Driver {
	d := &Driver{
		store:   store,
		runsDir: "runs",
		workers: defaultWorkers(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.miner == nil {
		d.miner = experience.NewMiner(llm)
	}
	if d.screener == nil {
		d.screener = experience.NewScreener(embedder)
	}
	if d.selector == nil {
		d.selector = experience.NewSelector(llm)
	}
	if d.generalizer == nil {
		d.generalizer = experience.NewGeneralizer(llm)
	}
	return d
}

// FromConfig builds a driver with every knob taken from the loaded config.
func FromConfig(cfg *config.Config, llm, embedder core.LLM, store *experience.Store) *Driver {
	genOpts := []core.GenerateOption{
		core.WithMaxTokens(cfg.LLM.Generation.MaxTokens),
		core.WithTemperature(cfg.LLM.Generation.Temperature),
	}
	return New(llm, embedder, store,
		WithWorkers(cfg.Mining.Workers),
		WithRunsDir(cfg.Paths.RunsDir),
		WithMiner(experience.NewMiner(llm,
			experience.WithMinerRetries(cfg.Mining.MaxRetries),
			experience.WithMinerBackoff(cfg.Mining.RetryBackoff),
			experience.WithMinerGenerateOptions(genOpts...))),
		WithScreener(experience.NewScreener(embedder,
			experience.WithShortlistK(cfg.Retrieval.ShortlistK))),
		WithSelector(experience.NewSelector(llm,
			experience.WithSelectorRetries(cfg.Retrieval.MaxRetries),
			experience.WithSelectorBackoff(cfg.Retrieval.RetryBackoff),
			experience.WithAbbreviatedK(cfg.Retrieval.AbbreviatedK),
			experience.WithSelectorGenerateOptions(genOpts...))),
		WithGeneralizer(experience.NewGeneralizer(llm,
			experience.WithGeneralizerRetries(cfg.Retrieval.MaxRetries),
			experience.WithGeneralizerBackoff(cfg.Retrieval.RetryBackoff),
			experience.WithGeneralizerGenerateOptions(genOpts...))),
	)
}

// defaultWorkers takes the process-wide concurrency level when one was
// configured, falling back to DefaultWorkers.
func defaultWorkers() int {
	if n := core.GlobalConfig.ConcurrencyLevel; n > 1 {
		return n
	}
	return DefaultWorkers
}

// Store returns the record store the driver mines into and retrieves from.
func (d *Driver) Store() *experience.Store {
	return d.store
}

// PrepareMineInputs joins the mining artifacts by problem ID: each trajectory
// gets its issue text from the issue-type side-file, its reference patch from
// the benchmark problems, and its verdict from the harness results (defaulted
// to not-resolved when unmeasured). Trajectories without an issue-type entry
// are dropped with a warning.
func PrepareMineInputs(issues datasets.IssueTypeMap, problems []datasets.Problem, trajectories []*datasets.Trajectory, verdicts datasets.VerdictMap) []experience.MineInput {
	refPatches := make(map[string]string, len(problems))
	for _, p := range problems {
		refPatches[p.ID] = p.ReferencePatch
	}

	logger := logging.GetLogger()
	inputs := make([]experience.MineInput, 0, len(trajectories))
	for _, tr := range trajectories {
		entry, ok := issues[tr.ProblemID]
		if !ok {
			logger.Warn(context.Background(), "no issue-type entry for trajectory %s; dropping from mining", tr.ProblemID)
			continue
		}
		inputs = append(inputs, experience.MineInput{
			ProblemID:      tr.ProblemID,
			IssueText:      entry.IssueText,
			Trajectory:     tr,
			GeneratedPatch: tr.Patch,
			ReferencePatch: refPatches[tr.ProblemID],
			Verdict:        verdicts.VerdictFor(tr.ProblemID),
		})
	}
	return inputs
}

// MineAll runs the offline extraction phase over the given inputs with a
// bounded worker pool, appending each mined record to the store. Extraction
// failures skip the problem and never abort the phase.
func (d *Driver) MineAll(ctx context.Context, inputs []experience.MineInput) *Progress {
	progress := NewProgress()
	logger := logging.GetLogger()

	p := pool.New().WithMaxGoroutines(d.workers)
	for _, in := range inputs {
		in := in
		p.Go(func() {
			mineCtx := logging.WithProblemID(ctx, in.ProblemID)
			if err := errors.CheckContext(mineCtx, "mining"); err != nil {
				progress.noteSkipped()
				return
			}

			record, err := d.miner.Mine(mineCtx, in)
			if err != nil {
				logger.Warn(mineCtx, "mining skipped %s: %v", in.ProblemID, err)
				progress.noteSkipped()
				return
			}
			if err := d.store.Append(in.ProblemID, *record); err != nil {
				logger.Warn(mineCtx, "mining skipped %s: %v", in.ProblemID, err)
				progress.noteSkipped()
				return
			}
			progress.noteMined()
		})
	}
	p.Wait()

	logger.Info(ctx, "mining phase complete: %s", progress.Summary())
	return progress
}

// RetrieveBlock runs screen, select and perspective-generalize for one issue
// and returns the exact injection block with the selection that produced it.
// Backs the CLI retrieve preview; retrieval sessions use the same sequence
// through the per-run cache instead.
func (d *Driver) RetrieveBlock(ctx context.Context, issueText string) (string, *experience.Selection, error) {
	candidates, err := d.screener.Screen(ctx, issueText, d.store)
	if err != nil {
		return "", nil, err
	}
	if len(candidates) == 0 {
		return "", nil, errors.New(errors.SelectionFailed, "record store is empty")
	}

	selection, err := d.selector.Select(ctx, issueText, candidates)
	if err != nil {
		return "", nil, err
	}

	block, err := d.generalizer.Perspective(ctx, issueText, []experience.Record{selection.Record})
	if err != nil {
		return "", nil, err
	}
	return block, selection, nil
}

// RunBatch processes every test problem with a bounded worker pool. Before
// any session starts it runs the leakage gate against the train mapping and
// the store; a violation aborts the batch with zero sessions run. The runNode
// callback drives one agent run through its session (the search-tree
// expansion itself is an external collaborator).
func (d *Driver) RunBatch(ctx context.Context, train, test datasets.IssueTypeMap, runNode func(ctx context.Context, s *Session) error) (*Progress, error) {
	progress := NewProgress()
	logger := logging.GetLogger()

	if err := CheckLeakage(train, test, d.store); err != nil {
		logger.Error(ctx, "leakage gate failed, batch aborted: %v", err)
		progress.abort(err.Error())
		return progress, err
	}

	p := pool.New().WithMaxGoroutines(d.workers)
	for _, problemID := range test.IDs() {
		problemID := problemID
		issueText := test[problemID].IssueText
		p.Go(func() {
			runCtx := logging.WithProblemID(ctx, problemID)
			session, err := d.NewSession(runCtx, problemID, issueText)
			if err != nil {
				logger.Error(runCtx, "run for %s could not start: %v", problemID, err)
				progress.noteFailed()
				return
			}
			runCtx = logging.WithRunID(runCtx, session.RunID())

			if err := runNode(runCtx, session); err != nil {
				logger.Error(runCtx, "run for %s failed: %v", problemID, err)
				progress.noteFailed()
				return
			}

			if session.Degraded() {
				progress.noteDegraded()
			} else {
				progress.noteInjected()
			}
		})
	}
	p.Wait()

	logger.Info(ctx, "retrieval phase complete: %s", progress.Summary())
	return progress, nil
}
