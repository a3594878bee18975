package datasets

import (
	"encoding/json"
	"os"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// VerdictSource records whether a verdict was actually measured by the test
// harness or defaulted in its absence. The distinction is preserved
// end-to-end so an untested patch is never conflated with a measured failure.
type VerdictSource string

const (
	VerdictMeasured  VerdictSource = "measured"
	VerdictDefaulted VerdictSource = "defaulted"
)

// Verdict is the resolved/not-resolved outcome for one (problem, trajectory)
// pair. Immutable once assigned.
type Verdict struct {
	Resolved bool          `json:"resolved"`
	Source   VerdictSource `json:"source"`
}

// VerdictMap maps problem IDs to measured verdicts.
type VerdictMap map[string]bool

// LoadVerdicts reads a JSON mapping from problem ID to resolved boolean, as
// produced by the Docker test harness. A missing file is not an error at
// this layer; callers decide whether to default.
func LoadVerdicts(path string) (VerdictMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.MissingArtifact, "failed to read verdict file"),
			errors.Fields{"path": path})
	}

	var m VerdictMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse verdict file"),
			errors.Fields{"path": path})
	}
	return m, nil
}

// VerdictFor looks up the harness verdict for a problem. When no measurement
// exists the verdict defaults to not-resolved with Source set to
// VerdictDefaulted, the documented approximation operators disable by
// supplying measurements.
func (m VerdictMap) VerdictFor(problemID string) Verdict {
	if m != nil {
		if resolved, ok := m[problemID]; ok {
			return Verdict{Resolved: resolved, Source: VerdictMeasured}
		}
	}
	return Verdict{Resolved: false, Source: VerdictDefaulted}
}
