package experience

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// Store is the append-only mapping from solved-problem identifier to mined
// experience records. Mining appends; retrieval reads a finished store. The
// generation counter advances on every append so embedding indexes can tell
// a stale snapshot from a current one.
type Store struct {
	mu         sync.RWMutex
	records    map[string][]Record
	generation int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string][]Record)}
}

// LoadStore reads a store from its persisted JSON form.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read record store"),
			errors.Fields{"path": path})
	}

	var records map[string][]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse record store"),
			errors.Fields{"path": path})
	}

	for id, recs := range records {
		for i := range recs {
			if err := recs[i].Validate(); err != nil {
				return nil, errors.WithFields(
					errors.Wrap(err, errors.InvalidInput, "record store holds invalid record"),
					errors.Fields{"path": path, "problem_id": id})
			}
		}
	}

	return &Store{records: records, generation: 1}, nil
}

// Append adds a validated record under its source problem's identifier.
// Existing records are never rewritten; a problem accumulates records.
func (s *Store) Append(problemID string, rec Record) error {
	if problemID == "" {
		return errors.New(errors.InvalidInput, "problem ID is required")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[problemID] = append(s.records[problemID], rec)
	s.generation++
	return nil
}

// Get returns the records mined from a problem.
func (s *Store) Get(problemID string) ([]Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.records[problemID]
	if !ok {
		return nil, false
	}
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, true
}

// Has reports whether a problem has at least one record. Used by the
// leakage check.
func (s *Store) Has(problemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[problemID]
	return ok
}

// Keys returns the problem identifiers in sorted order, giving repeated
// calls on an unchanged store a stable iteration order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for id := range s.records {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of problem keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Generation returns the append counter for index invalidation.
func (s *Store) Generation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Save persists the store as a JSON mapping, creating parent directories as
// needed. The on-disk format is stable and forward-appendable: later passes
// add new keys, never rewrite existing ones.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.records, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to marshal record store")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.Unknown, "failed to create store directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to write record store"),
			errors.Fields{"path": path})
	}
	return nil
}

// MergeStores unions two stores by problem identifier. On a key collision
// the src store wins (last-writer-wins; in normal operation each problem is
// mined exactly once, so collisions indicate a re-run).
func MergeStores(dst, src *Store) *Store {
	merged := NewStore()

	dst.mu.RLock()
	for id, recs := range dst.records {
		out := make([]Record, len(recs))
		copy(out, recs)
		merged.records[id] = out
	}
	dst.mu.RUnlock()

	src.mu.RLock()
	for id, recs := range src.records {
		out := make([]Record, len(recs))
		copy(out, recs)
		merged.records[id] = out
	}
	src.mu.RUnlock()

	merged.generation = 1
	return merged
}
