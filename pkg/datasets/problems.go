package datasets

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// Problem is one benchmark issue. The reference patch is present only for
// training problems; test problems carry an empty patch by construction.
// Problems are owned by the benchmark and read-only to the pipeline.
type Problem struct {
	ID             string `json:"instance_id"`
	IssueText      string `json:"problem_statement"`
	ReferencePatch string `json:"patch,omitempty"`
}

// LoadProblemsParquet reads benchmark problems from a parquet file with the
// SWE-bench column layout (instance_id, problem_statement, patch).
func LoadProblemsParquet(path string) ([]Problem, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to open parquet file"),
			errors.Fields{"path": path})
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to create arrow reader")
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read parquet schema")
	}

	idIndices := schema.FieldIndices("instance_id")
	issueIndices := schema.FieldIndices("problem_statement")
	patchIndices := schema.FieldIndices("patch")
	if len(idIndices) == 0 || len(issueIndices) == 0 {
		return nil, errors.New(errors.InvalidInput,
			"required columns 'instance_id' and 'problem_statement' not found in the schema")
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read parquet table")
	}
	defer table.Release()

	idVals := flattenStringColumn(table.Column(idIndices[0]))
	issueVals := flattenStringColumn(table.Column(issueIndices[0]))
	var patchVals []string
	if len(patchIndices) > 0 {
		patchVals = flattenStringColumn(table.Column(patchIndices[0]))
	}

	problems := make([]Problem, len(idVals))
	for i := range problems {
		problems[i] = Problem{
			ID:        idVals[i],
			IssueText: issueVals[i],
		}
		if patchVals != nil {
			problems[i].ReferencePatch = patchVals[i]
		}
	}

	return problems, nil
}

// flattenStringColumn walks a column's chunks in order. Row groups split
// columns into multiple chunks, so a whole-table row index cannot address
// any single chunk.
func flattenStringColumn(col *arrow.Column) []string {
	out := make([]string, 0, col.Data().Len())
	for _, chunk := range col.Data().Chunks() {
		vals := chunk.(*array.String)
		for i := 0; i < vals.Len(); i++ {
			out = append(out, vals.Value(i))
		}
	}
	return out
}

// LoadProblemsJSONL reads benchmark problems from a JSON-lines file, one
// problem object per line. Blank lines are skipped.
func LoadProblemsJSONL(path string) ([]Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to open JSONL file"),
			errors.Fields{"path": path})
	}
	defer f.Close()

	var problems []Problem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var p Problem
		if err := json.Unmarshal(text, &p); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "failed to parse problem line"),
				errors.Fields{"path": path, "line": line})
		}
		if p.ID == "" {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "problem line missing instance_id"),
				errors.Fields{"path": path, "line": line})
		}
		problems = append(problems, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to scan JSONL file")
	}

	return problems, nil
}
