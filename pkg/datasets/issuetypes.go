package datasets

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// IssueType is the external classification side-file entry for one problem:
// a short label plus the raw issue text. It is the query representation for
// screening and selection, and the issue text the miner prompts with.
type IssueType struct {
	Classification string `json:"issue_type"`
	IssueText      string `json:"issue_text"`
}

// IssueTypeMap maps problem IDs to their classification entries.
type IssueTypeMap map[string]IssueType

// LoadIssueTypes reads an issue-type side-file. The file must exist before
// any retrieval against its problems is attempted; a missing file is a
// pipeline-fatal MissingArtifact.
func LoadIssueTypes(path string) (IssueTypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read issue-type file"),
			errors.Fields{"path": path})
	}

	var m IssueTypeMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse issue-type file"),
			errors.Fields{"path": path})
	}

	for id, entry := range m {
		if entry.IssueText == "" {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "issue-type entry missing issue text"),
				errors.Fields{"path": path, "problem_id": id})
		}
	}

	return m, nil
}

// IDs returns the problem identifiers in sorted order.
func (m IssueTypeMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var labelCaser = cases.Title(language.English)

// NormalizeLabel canonicalizes a classification label for reports:
// underscores and dashes become spaces, words are title-cased.
func NormalizeLabel(label string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(label))
	if cleaned == "" {
		return "Unclassified"
	}
	return labelCaser.String(cleaned)
}
