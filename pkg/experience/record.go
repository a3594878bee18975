package experience

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// Flag marks which extraction schema a record follows.
type Flag string

const (
	FlagSuccess Flag = "success"
	FlagFailed  Flag = "failed"
)

// ReflectionCount is how many independent reflections a failed record
// carries in each category.
const ReflectionCount = 3

// EntryPoint names the code element a successful attempt correctly started
// from, and why it was the right starting point.
type EntryPoint struct {
	Element string `json:"element"`
	Reason  string `json:"reason"`
}

// Record is one mined unit of reusable knowledge. The two flags carry
// asymmetric fields: a success generalizes from one concrete causal chain
// (perspective, entry point, modification pattern), while a failure is more
// useful as independent warning signals, three per category, phrased
// abstractly with no identifiers from the source instance.
type Record struct {
	Flag Flag `json:"flag"`

	// Success fields
	Perspective  string      `json:"perspective,omitempty"`
	EntryPoint   *EntryPoint `json:"entry_point,omitempty"`
	Modification string      `json:"modification,omitempty"`

	// Failure fields: three reflections per category
	PerspectiveReflections  []string `json:"perspective_reflections,omitempty"`
	PositioningReflections  []string `json:"positioning_reflections,omitempty"`
	ModificationReflections []string `json:"modification_reflections,omitempty"`

	// Provenance
	SourceIssue   string                 `json:"source_issue"`
	VerdictSource datasets.VerdictSource `json:"verdict_source"`
}

// Validate enforces the record schema invariant: a success record has
// non-empty perspective, entry point and modification; a failed record has
// exactly ReflectionCount non-empty entries per category.
func (r *Record) Validate() error {
	switch r.Flag {
	case FlagSuccess:
		if r.Perspective == "" {
			return errors.New(errors.ValidationFailed, "success record missing perspective")
		}
		if r.EntryPoint == nil || r.EntryPoint.Element == "" || r.EntryPoint.Reason == "" {
			return errors.New(errors.ValidationFailed, "success record missing entry point")
		}
		if r.Modification == "" {
			return errors.New(errors.ValidationFailed, "success record missing modification")
		}
	case FlagFailed:
		for name, list := range map[string][]string{
			"perspective":  r.PerspectiveReflections,
			"positioning":  r.PositioningReflections,
			"modification": r.ModificationReflections,
		} {
			if len(list) != ReflectionCount {
				return errors.WithFields(
					errors.New(errors.ValidationFailed, "failed record has wrong reflection count"),
					errors.Fields{"category": name, "count": len(list)})
			}
			for _, item := range list {
				if strings.TrimSpace(item) == "" {
					return errors.WithFields(
						errors.New(errors.ValidationFailed, "failed record has empty reflection"),
						errors.Fields{"category": name})
				}
			}
		}
	default:
		return errors.WithFields(
			errors.New(errors.ValidationFailed, "record flag must be success or failed"),
			errors.Fields{"flag": string(r.Flag)})
	}
	return nil
}

// Render formats the record's knowledge content as shown to the selector and
// generalizer models.
func (r *Record) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Outcome: %s\n", r.Flag)

	if r.Flag == FlagSuccess {
		fmt.Fprintf(&sb, "Correct understanding: %s\n", r.Perspective)
		if r.EntryPoint != nil {
			fmt.Fprintf(&sb, "Correct entry point: %s (%s)\n", r.EntryPoint.Element, r.EntryPoint.Reason)
		}
		fmt.Fprintf(&sb, "Modification pattern: %s\n", r.Modification)
		return sb.String()
	}

	writeReflections := func(title string, items []string) {
		fmt.Fprintf(&sb, "%s:\n", title)
		for i, item := range items {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, item)
		}
	}
	writeReflections("Misunderstandings of the issue", r.PerspectiveReflections)
	writeReflections("Wrong location focus", r.PositioningReflections)
	writeReflections("Wrong modification approach", r.ModificationReflections)
	return sb.String()
}
