package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeProblemsParquet writes a SWE-bench-shaped parquet file. A chunkSize
// smaller than the row count forces multiple row groups, which read back as
// multiple chunks per column.
func writeProblemsParquet(t *testing.T, path string, chunkSize int64, ids, issues, patches []string) {
	t.Helper()

	fields := []arrow.Field{
		{Name: "instance_id", Type: arrow.BinaryTypes.String},
		{Name: "problem_statement", Type: arrow.BinaryTypes.String},
	}
	if patches != nil {
		fields = append(fields, arrow.Field{Name: "patch", Type: arrow.BinaryTypes.String})
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues(ids, nil)
	b.Field(1).(*array.StringBuilder).AppendValues(issues, nil)
	if patches != nil {
		b.Field(2).(*array.StringBuilder).AppendValues(patches, nil)
	}

	rec := b.NewRecord()
	defer rec.Release()
	table := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer table.Release()

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pqarrow.WriteTable(table, f, chunkSize, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	require.NoError(t, f.Close())
}

func TestLoadProblemsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.parquet")
	writeProblemsParquet(t, path, 16,
		[]string{"django__django-1", "sympy__sympy-2"},
		[]string{"ordering breaks", "simplify loops forever"},
		[]string{"diff --git a b", ""})

	problems, err := LoadProblemsParquet(path)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "django__django-1", problems[0].ID)
	assert.Equal(t, "diff --git a b", problems[0].ReferencePatch)
	assert.Equal(t, "simplify loops forever", problems[1].IssueText)
	assert.Empty(t, problems[1].ReferencePatch)
}

func TestLoadProblemsParquet_MultipleRowGroups(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	issues := []string{"i1", "i2", "i3", "i4", "i5"}
	patches := []string{"d1", "", "d3", "", "d5"}

	path := filepath.Join(t.TempDir(), "problems.parquet")
	writeProblemsParquet(t, path, 2, ids, issues, patches)

	problems, err := LoadProblemsParquet(path)
	require.NoError(t, err)
	require.Len(t, problems, len(ids))
	for i := range ids {
		assert.Equal(t, ids[i], problems[i].ID)
		assert.Equal(t, issues[i], problems[i].IssueText)
		assert.Equal(t, patches[i], problems[i].ReferencePatch)
	}
}

func TestLoadProblemsParquet_NoPatchColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.parquet")
	writeProblemsParquet(t, path, 16,
		[]string{"p1"}, []string{"test problems carry no patch"}, nil)

	problems, err := LoadProblemsParquet(path)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Empty(t, problems[0].ReferencePatch)
}

func TestLoadProblemsJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "problems.jsonl", `{"instance_id":"django__django-1","problem_statement":"ordering breaks","patch":"diff --git a b"}

{"instance_id":"sympy__sympy-2","problem_statement":"simplify loops forever"}
`)

	problems, err := LoadProblemsJSONL(path)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "django__django-1", problems[0].ID)
	assert.Equal(t, "diff --git a b", problems[0].ReferencePatch)
	assert.Equal(t, "simplify loops forever", problems[1].IssueText)
	assert.Empty(t, problems[1].ReferencePatch)
}

func TestLoadProblemsJSONL_MissingID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "problems.jsonl", `{"problem_statement":"no id"}`)

	_, err := LoadProblemsJSONL(path)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestLoadProblemsJSONL_MissingFile(t *testing.T) {
	_, err := LoadProblemsJSONL("/nonexistent.jsonl")
	require.Error(t, err)
	assert.Equal(t, errors.MissingArtifact, errors.Code(err))
}

func TestLoadIssueTypes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "issue_types.json", `{
  "django__django-1": {"issue_type": "query_ordering", "issue_text": "ordering breaks"},
  "sympy__sympy-2": {"issue_type": "infinite_loop", "issue_text": "simplify loops forever"}
}`)

	m, err := LoadIssueTypes(path)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, "query_ordering", m["django__django-1"].Classification)
	assert.Equal(t, []string{"django__django-1", "sympy__sympy-2"}, m.IDs())
}

func TestLoadIssueTypes_MissingText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "issue_types.json", `{"x": {"issue_type": "bug"}}`)

	_, err := LoadIssueTypes(path)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestLoadIssueTypes_MissingFile(t *testing.T) {
	_, err := LoadIssueTypes(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, errors.MissingArtifact, errors.Code(err))
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "Query Ordering", NormalizeLabel("query_ordering"))
	assert.Equal(t, "Off By One", NormalizeLabel("off-by-one"))
	assert.Equal(t, "Unclassified", NormalizeLabel("  "))
}

func TestLoadTrajectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "t1.json", `{
  "problem_id": "django__django-1",
  "actions": [
    {"kind": "search", "detail": "order_by"},
    {"kind": "view", "target": "django/db/models/query.py"},
    {"kind": "edit", "target": "query.py", "detail": "guard empty ordering"},
    {"kind": "finish"}
  ],
  "patch": "diff --git a b",
  "node_path": [1, 2, 3]
}`)

	tr, err := LoadTrajectory(path)
	require.NoError(t, err)
	assert.Equal(t, "django__django-1", tr.ProblemID)
	require.Len(t, tr.Actions, 4)
	assert.Equal(t, ActionEdit, tr.Actions[2].Kind)
	assert.Equal(t, []int{1, 2, 3}, tr.NodePath)

	rendered := tr.Render()
	assert.Contains(t, rendered, "1. [search]: order_by")
	assert.Contains(t, rendered, "3. [edit] query.py: guard empty ordering")
}

func TestLoadTrajectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"problem_id": "p2", "actions": []}`)
	writeFile(t, dir, "a.json", `{"problem_id": "p1", "actions": []}`)
	writeFile(t, dir, "notes.txt", "not a trajectory")

	trs, err := LoadTrajectories(dir)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	// sorted by file name
	assert.Equal(t, "p1", trs[0].ProblemID)
	assert.Equal(t, "p2", trs[1].ProblemID)
}

func TestVerdictFor(t *testing.T) {
	m := VerdictMap{"p1": true, "p2": false}

	v := m.VerdictFor("p1")
	assert.True(t, v.Resolved)
	assert.Equal(t, VerdictMeasured, v.Source)

	v = m.VerdictFor("p2")
	assert.False(t, v.Resolved)
	assert.Equal(t, VerdictMeasured, v.Source)

	v = m.VerdictFor("unknown")
	assert.False(t, v.Resolved)
	assert.Equal(t, VerdictDefaulted, v.Source)

	var nilMap VerdictMap
	v = nilMap.VerdictFor("p1")
	assert.Equal(t, VerdictDefaulted, v.Source)
}

func TestLoadVerdicts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "verdicts.json", `{"p1": true, "p2": false}`)

	m, err := LoadVerdicts(path)
	require.NoError(t, err)
	assert.Equal(t, VerdictMap{"p1": true, "p2": false}, m)
}
