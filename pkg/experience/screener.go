package experience

import (
	"context"
	"sort"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// DefaultShortlistK is the reference shortlist size.
const DefaultShortlistK = 10

// Candidate is one shortlisted record with its similarity to the query.
type Candidate struct {
	ProblemID string
	Record    Record
	Score     float64
}

// Screener reduces the full record store to a fixed-size shortlist by cosine
// similarity between sentence embeddings of the query issue text and each
// record's source issue text. It is a pure function of store and query; the
// only model it touches is the fixed embedding model.
type Screener struct {
	embedder core.LLM
	index    *Index
	k        int
}

// ScreenerOption customizes a Screener.
type ScreenerOption func(*Screener)

// WithShortlistK overrides the shortlist size.
func WithShortlistK(k int) ScreenerOption {
	return func(s *Screener) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithIndex attaches a persistent embedding index; without one, store
// embeddings are computed per call.
func WithIndex(ix *Index) ScreenerOption {
	return func(s *Screener) {
		s.index = ix
	}
}

// NewScreener creates a screener over the given embedding model. The model
// must stay fixed for the lifetime of a store so scores remain comparable.
func NewScreener(embedder core.LLM, opts ...ScreenerOption) *Screener {
	s := &Screener{
		embedder: embedder,
		k:        DefaultShortlistK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen ranks every record in the store against the query issue text and
// returns up to K candidates, descending by score. A store smaller than K
// returns whole, ranked. Ties break by problem ID so repeated calls on an
// unchanged store agree.
func (s *Screener) Screen(ctx context.Context, issueText string, store *Store) ([]Candidate, error) {
	if issueText == "" {
		return nil, errors.New(errors.InvalidInput, "query issue text is required")
	}
	if store == nil || store.Len() == 0 {
		return nil, nil
	}

	queryResult, err := s.embedder.CreateEmbedding(ctx, issueText)
	if err != nil {
		return nil, errors.Wrap(err, errors.EmbeddingFailed, "failed to embed query issue text")
	}
	query := normalize(queryResult.Vector)

	if s.index != nil {
		if err := s.index.Ensure(ctx, store, s.embedder); err != nil {
			return nil, err
		}
	}

	var candidates []Candidate
	for _, problemID := range store.Keys() {
		recs, _ := store.Get(problemID)
		if len(recs) == 0 {
			continue
		}

		vec, err := s.recordVector(ctx, problemID, recs[0].SourceIssue)
		if err != nil {
			return nil, err
		}
		score := dot(query, vec)

		for _, rec := range recs {
			candidates = append(candidates, Candidate{
				ProblemID: problemID,
				Record:    rec,
				Score:     score,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ProblemID < candidates[j].ProblemID
	})

	if len(candidates) > s.k {
		candidates = candidates[:s.k]
	}
	return candidates, nil
}

func (s *Screener) recordVector(ctx context.Context, problemID, sourceIssue string) ([]float32, error) {
	if s.index != nil {
		vec, ok, err := s.index.Vector(problemID, sourceIssue)
		if err != nil {
			return nil, err
		}
		if ok {
			return vec, nil
		}
	}

	result, err := s.embedder.CreateEmbedding(ctx, sourceIssue)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.EmbeddingFailed, "failed to embed record issue text"),
			errors.Fields{"problem_id": problemID})
	}
	return normalize(result.Vector), nil
}
