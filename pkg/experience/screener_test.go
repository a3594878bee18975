package experience

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/swexp-go/internal/testutil"
)

// storeWithIssues builds a store with one failed record per issue text,
// keyed p0, p1, ...
func storeWithIssues(t *testing.T, issues ...string) *Store {
	t.Helper()
	store := NewStore()
	for i, issue := range issues {
		rec := validFailedRecord()
		rec.SourceIssue = issue
		require.NoError(t, store.Append(fmt.Sprintf("p%d", i), rec))
	}
	return store
}

func TestScreener_RanksBySimilarity(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	embedder.Embeddings = map[string][]float32{
		"query":    {1, 0, 0},
		"aligned":  {2, 0, 0},  // cosine 1 after normalization
		"diagonal": {1, 1, 0},  // cosine ~0.707
		"opposite": {-1, 0, 0}, // cosine -1
	}
	store := storeWithIssues(t, "diagonal", "aligned", "opposite")

	screener := NewScreener(embedder)
	candidates, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "p1", candidates[0].ProblemID)
	assert.Equal(t, "p0", candidates[1].ProblemID)
	assert.Equal(t, "p2", candidates[2].ProblemID)
	assert.InDelta(t, 1.0, candidates[0].Score, 1e-6)
	assert.InDelta(t, 0.7071, candidates[1].Score, 1e-3)
	assert.InDelta(t, -1.0, candidates[2].Score, 1e-6)
}

func TestScreener_ShortlistBound(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	issues := make([]string, 15)
	for i := range issues {
		issues[i] = fmt.Sprintf("issue number %d with padding", i)
	}
	store := storeWithIssues(t, issues...)

	screener := NewScreener(embedder)
	candidates, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	assert.Len(t, candidates, DefaultShortlistK)

	small := NewScreener(embedder, WithShortlistK(4))
	candidates, err = small.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	assert.Len(t, candidates, 4)
}

func TestScreener_SmallStoreReturnsAll(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	store := storeWithIssues(t, "only entry")

	screener := NewScreener(embedder)
	candidates, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, "p0", candidates[0].ProblemID)
}

func TestScreener_EmptyStore(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	screener := NewScreener(embedder)

	candidates, err := screener.Screen(context.Background(), "query", NewStore())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestScreener_TiesBreakByProblemID(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	embedder.Embeddings = map[string][]float32{
		"query": {1, 0},
		"same":  {1, 0},
	}
	// identical issue text for every record, so all scores tie
	store := storeWithIssues(t, "same", "same", "same")

	screener := NewScreener(embedder)
	first, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	second, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, "p0", first[0].ProblemID)
	assert.Equal(t, "p1", first[1].ProblemID)
	assert.Equal(t, "p2", first[2].ProblemID)
	assert.Equal(t, first, second)
}

func TestScreener_MultipleRecordsPerProblem(t *testing.T) {
	embedder := testutil.NewFakeLLM()
	store := NewStore()
	rec := validFailedRecord()
	rec.SourceIssue = "shared issue"
	require.NoError(t, store.Append("p0", rec))
	success := validSuccessRecord()
	success.SourceIssue = "shared issue"
	require.NoError(t, store.Append("p0", success))

	screener := NewScreener(embedder)
	candidates, err := screener.Screen(context.Background(), "query", store)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// one embedding per problem, not per record, plus the query
	assert.Equal(t, 2, embedder.EmbeddingCalls())
}

func TestNormalizeAndDot(t *testing.T) {
	unit := normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(unit[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(unit[1]), 1e-6)
	assert.InDelta(t, 1.0, dot(unit, unit), 1e-6)

	zero := normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
