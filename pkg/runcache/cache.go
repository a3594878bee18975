// Package runcache coordinates when experience guidance is freshly generated
// versus reused across the branching search tree explored for one target
// problem. Perspective text is generated exactly once per run, at the first
// node whose prompt is constructed; every other node copies that cached text
// verbatim. Edit nodes additionally record their original and enhanced
// instruction pair, generated fresh each time. The cache persists as a JSON
// file scoped by run ID and problem ID so the decisions can be audited later.
package runcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// State names the cache's position in its lifecycle.
type State string

const (
	// StateUninitialized: no node has constructed a prompt yet.
	StateUninitialized State = "uninitialized"
	// StateNode1Resolved: the canonical perspective exists and exactly one
	// node has used it.
	StateNode1Resolved State = "node1-resolved"
	// StateSteady: later nodes are reusing the canonical text.
	StateSteady State = "steady"
)

// Entry is the cached state for one search-tree node.
type Entry struct {
	NodeID      int    `json:"node_id"`
	Perspective string `json:"perspective"`

	// Set only when the node performed an edit
	OriginalInstruction string `json:"original_instruction,omitempty"`
	EnhancedInstruction string `json:"enhanced_instruction,omitempty"`
}

type cacheFile struct {
	RunID         string         `json:"run_id"`
	ProblemID     string         `json:"problem_id"`
	CanonicalNode int            `json:"canonical_node"`
	Inconsistent  bool           `json:"inconsistent,omitempty"`
	Entries       map[int]*Entry `json:"entries"`
}

// PerspectiveFunc generates perspective guidance; the cache calls it at most
// once per run on the happy path.
type PerspectiveFunc func(ctx context.Context) (string, error)

// Cache is the per-run node cache. It is owned by a single target-problem
// run; node 1 completes before any child node is scheduled, so the single
// writer needs no cross-run coordination.
type Cache struct {
	mu            sync.Mutex
	path          string
	runID         string
	problemID     string
	canonicalNode int
	inconsistent  bool
	entries       map[int]*Entry
}

// New creates the cache for one run, rooted under runsDir/runID.
func New(runsDir, runID, problemID string) (*Cache, error) {
	dir := filepath.Join(runsDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to create run cache directory")
	}
	return &Cache{
		path:      filepath.Join(dir, problemID+".json"),
		runID:     runID,
		problemID: problemID,
		entries:   make(map[int]*Entry),
	}, nil
}

// Load reads a persisted cache file for post-hoc inspection or resumption.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read run cache"),
			errors.Fields{"path": path})
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.CacheInconsistent, "run cache file is corrupt"),
			errors.Fields{"path": path})
	}
	if f.Entries == nil {
		f.Entries = make(map[int]*Entry)
	}

	return &Cache{
		path:          path,
		runID:         f.RunID,
		problemID:     f.ProblemID,
		canonicalNode: f.CanonicalNode,
		inconsistent:  f.Inconsistent,
		entries:       f.Entries,
	}, nil
}

// Path returns the cache's on-disk location.
func (c *Cache) Path() string {
	return c.path
}

// State reports the lifecycle position.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.canonicalNode == 0:
		return StateUninitialized
	case len(c.entries) == 1:
		return StateNode1Resolved
	default:
		return StateSteady
	}
}

// Inconsistent reports whether this run hit the non-first-node-without-
// canonical-perspective condition and recovered by regenerating.
func (c *Cache) Inconsistent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inconsistent
}

// Perspective returns the perspective text for a node. The first node of the
// run generates it; every later node copies the canonical text without
// calling generate. A non-first node arriving with no canonical entry is a
// configuration error (node 1 should structurally always run first); it is
// logged loudly, flagged, and recovered by regenerating.
func (c *Cache) Perspective(ctx context.Context, nodeID int, generate PerspectiveFunc) (string, error) {
	if nodeID < 1 {
		return "", errors.New(errors.InvalidInput, "node IDs start at 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[nodeID]; ok && e.Perspective != "" {
		return e.Perspective, nil
	}

	if c.canonicalNode != 0 {
		canonical, ok := c.entries[c.canonicalNode]
		if ok && canonical.Perspective != "" {
			c.entries[nodeID] = &Entry{NodeID: nodeID, Perspective: canonical.Perspective}
			if err := c.persistLocked(); err != nil {
				return "", err
			}
			return canonical.Perspective, nil
		}
		// canonical points at a gutted entry; fall through to recovery
	}

	logger := logging.GetLogger()
	if c.canonicalNode != 0 || nodeID != 1 {
		logger.Error(ctx, "run cache inconsistent: node %d of %s/%s has no canonical perspective; regenerating (degraded recovery)",
			nodeID, c.runID, c.problemID)
		c.inconsistent = true
	}

	text, err := generate(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.GeneralizationFailed, "perspective generation failed")
	}

	c.entries[nodeID] = &Entry{NodeID: nodeID, Perspective: text}
	c.canonicalNode = nodeID
	if err := c.persistLocked(); err != nil {
		return "", err
	}
	return text, nil
}

// RecordModification stores the original and enhanced instruction pair for
// an edit node. The node's perspective is filled from the canonical entry if
// the node has none yet, keeping every entry self-contained for audit.
func (c *Cache) RecordModification(nodeID int, original, enhanced string) error {
	if nodeID < 1 {
		return errors.New(errors.InvalidInput, "node IDs start at 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[nodeID]
	if !ok {
		e = &Entry{NodeID: nodeID}
		if canonical, ok := c.entries[c.canonicalNode]; ok {
			e.Perspective = canonical.Perspective
		}
		c.entries[nodeID] = e
	}
	e.OriginalInstruction = original
	e.EnhancedInstruction = enhanced
	return c.persistLocked()
}

// Entry returns a copy of one node's cached state.
func (c *Cache) Entry(nodeID int) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[nodeID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Nodes returns the visited node IDs in ascending order.
func (c *Cache) Nodes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes := make([]int, 0, len(c.entries))
	for id := range c.entries {
		nodes = append(nodes, id)
	}
	sort.Ints(nodes)
	return nodes
}

func (c *Cache) persistLocked() error {
	f := cacheFile{
		RunID:         c.runID,
		ProblemID:     c.problemID,
		CanonicalNode: c.canonicalNode,
		Inconsistent:  c.inconsistent,
		Entries:       c.entries,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to marshal run cache")
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to write run cache"),
			errors.Fields{"path": c.path})
	}
	return nil
}
