package datasets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// ActionKind is the coarse taxonomy of agent actions in a trajectory.
type ActionKind string

const (
	ActionSearch ActionKind = "search"
	ActionView   ActionKind = "view"
	ActionEdit   ActionKind = "edit"
	ActionFinish ActionKind = "finish"
)

// Action is one step in an agent's attempt at a problem.
type Action struct {
	Kind ActionKind `json:"kind"`
	// Target names the code element or file the action touched
	Target string `json:"target,omitempty"`
	// Detail carries the action's free-form payload (query, instruction, diff)
	Detail string `json:"detail,omitempty"`
}

// Trajectory is the ordered action log for one attempt at one problem, plus
// the final candidate patch (empty when the agent never produced one). The
// node path records which search-tree path produced this attempt.
type Trajectory struct {
	ProblemID string   `json:"problem_id"`
	Actions   []Action `json:"actions"`
	Patch     string   `json:"patch,omitempty"`
	NodePath  []int    `json:"node_path,omitempty"`
}

// Render formats the trajectory as the numbered action log shown to the
// extraction model.
func (tr *Trajectory) Render() string {
	var sb strings.Builder
	for i, a := range tr.Actions {
		fmt.Fprintf(&sb, "%d. [%s]", i+1, a.Kind)
		if a.Target != "" {
			fmt.Fprintf(&sb, " %s", a.Target)
		}
		if a.Detail != "" {
			fmt.Fprintf(&sb, ": %s", a.Detail)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// LoadTrajectory reads one trajectory JSON file.
func LoadTrajectory(path string) (*Trajectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read trajectory file"),
			errors.Fields{"path": path})
	}

	var tr Trajectory
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse trajectory file"),
			errors.Fields{"path": path})
	}
	if tr.ProblemID == "" {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "trajectory missing problem_id"),
			errors.Fields{"path": path})
	}

	return &tr, nil
}

// LoadTrajectories reads every *.json trajectory under dir, sorted by file
// name for stable ordering.
func LoadTrajectories(dir string) ([]*Trajectory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read trajectory directory"),
			errors.Fields{"dir": dir})
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	trajectories := make([]*Trajectory, 0, len(names))
	for _, name := range names {
		tr, err := LoadTrajectory(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		trajectories = append(trajectories, tr)
	}
	return trajectories, nil
}
