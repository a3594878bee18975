package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/experience"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
	"github.com/XiaoConstantine/swexp-go/pkg/runcache"
)

// Session owns the experience injection for one agent run over one target
// problem. Selection happens once at session start; perspective guidance is
// generated once at the first node through the per-run cache; edit nodes get
// a freshly polished instruction each time. Every LLM failure degrades the
// session toward running with less (or zero) injected experience; nothing
// here aborts an agent run.
type Session struct {
	driver    *Driver
	runID     string
	problemID string
	issueText string
	records   []experience.Record
	cache     *runcache.Cache
	degraded  bool
}

// NewSession screens and selects for one target problem and opens its
// run-scoped cache. Selection failure is absorbed: the session starts
// degraded, with zero records to inject.
func (d *Driver) NewSession(ctx context.Context, problemID, issueText string) (*Session, error) {
	if problemID == "" || issueText == "" {
		return nil, errors.New(errors.InvalidInput, "session requires a problem ID and issue text")
	}

	runID := uuid.New().String()
	cache, err := runcache.New(d.runsDir, runID, problemID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		driver:    d,
		runID:     runID,
		problemID: problemID,
		issueText: issueText,
		cache:     cache,
	}
	ctx = s.annotate(ctx)

	logger := logging.GetLogger()
	candidates, err := d.screener.Screen(ctx, issueText, d.store)
	if err != nil {
		logger.Warn(ctx, "screening failed for %s, run proceeds without experience: %v", problemID, err)
		s.degraded = true
		return s, nil
	}
	if len(candidates) == 0 {
		logger.Info(ctx, "record store holds nothing to inject for %s", problemID)
		s.degraded = true
		return s, nil
	}

	selection, err := d.selector.Select(ctx, issueText, candidates)
	if err != nil {
		logger.Warn(ctx, "selection failed for %s, run proceeds without experience: %v", problemID, err)
		s.degraded = true
		return s, nil
	}

	s.records = []experience.Record{selection.Record}
	return s, nil
}

// annotate stamps the run identity onto the context so every log line from
// this session carries its problem and run IDs.
func (s *Session) annotate(ctx context.Context) context.Context {
	return logging.WithRunID(logging.WithProblemID(ctx, s.problemID), s.runID)
}

// RunID returns the UUID scoping this run's cache files.
func (s *Session) RunID() string {
	return s.runID
}

// ProblemID returns the target problem identifier.
func (s *Session) ProblemID() string {
	return s.problemID
}

// Degraded reports whether this run ended up with zero injected experience.
func (s *Session) Degraded() bool {
	return s.degraded
}

// CachePath returns the on-disk location of the run's node cache.
func (s *Session) CachePath() string {
	return s.cache.Path()
}

// Inconsistent reports whether the node cache hit its recovery path.
func (s *Session) Inconsistent() bool {
	return s.cache.Inconsistent()
}

// NodePrompt assembles the task prompt for one search-tree node: problem
// statement, then the experience block, then any tool-result context. The
// block is generated at the first node and read from the cache everywhere
// else. Generalization failure drops the block for the whole run.
func (s *Session) NodePrompt(ctx context.Context, nodeID int, problemStatement, toolContext string) (string, error) {
	if s.degraded || len(s.records) == 0 {
		return joinPrompt(problemStatement, "", toolContext), nil
	}
	ctx = s.annotate(ctx)

	block, err := s.cache.Perspective(ctx, nodeID, func(ctx context.Context) (string, error) {
		return s.driver.generalizer.Perspective(ctx, s.issueText, s.records)
	})
	if err != nil {
		if errors.Code(err) == errors.Canceled {
			return "", err
		}
		logging.GetLogger().Warn(ctx, "perspective guidance unavailable for %s, run proceeds without experience: %v", s.problemID, err)
		s.degraded = true
		return joinPrompt(problemStatement, "", toolContext), nil
	}

	return joinPrompt(problemStatement, block, toolContext), nil
}

// EnhanceEdit polishes a pending edit instruction with the selected record's
// lessons and stores the original+enhanced pair in the node cache. The code
// context is mutable, so this runs fresh for every edit. On failure the
// original instruction passes through unchanged.
func (s *Session) EnhanceEdit(ctx context.Context, nodeID int, codeContext, instruction string) (string, error) {
	if s.degraded || len(s.records) == 0 {
		return instruction, nil
	}
	ctx = s.annotate(ctx)

	enhanced, err := s.driver.generalizer.Modification(ctx, s.issueText, s.records, codeContext, instruction)
	if err != nil {
		if errors.Code(err) == errors.Canceled {
			return "", err
		}
		logging.GetLogger().Warn(ctx, "instruction polish failed for %s node %d, keeping original: %v", s.problemID, nodeID, err)
		enhanced = instruction
	}

	if err := s.cache.RecordModification(nodeID, instruction, enhanced); err != nil {
		return "", err
	}
	return enhanced, nil
}

// joinPrompt concatenates the prompt segments, skipping empty ones. The
// experience block sits between the problem statement and the tool context.
func joinPrompt(problemStatement, block, toolContext string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{problemStatement, block, toolContext} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}
