package pipeline

import (
	"sort"

	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/experience"
)

// CheckLeakage verifies the train/test separation guarantee before any
// retrieval against test problems: no identifier may appear in both issue-type
// mappings, and no test identifier may be keyed in the record store. Either
// overlap means experience mined from a problem could be injected back into
// an attempt at that same problem, so a violation is fatal.
func CheckLeakage(train, test datasets.IssueTypeMap, store *experience.Store) error {
	var overlap []string
	for id := range test {
		if _, ok := train[id]; ok {
			overlap = append(overlap, id)
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return errors.WithFields(
			errors.New(errors.LeakageDetected, "problem IDs present in both train and test mappings"),
			errors.Fields{"overlap": overlap})
	}

	if store != nil {
		var leaked []string
		for id := range test {
			if store.Has(id) {
				leaked = append(leaked, id)
			}
		}
		if len(leaked) > 0 {
			sort.Strings(leaked)
			return errors.WithFields(
				errors.New(errors.LeakageDetected, "test problem IDs keyed in the record store"),
				errors.Fields{"leaked": leaked})
		}
	}

	return nil
}

// VerifySeparation runs the leakage check directly from the three on-disk
// artifacts, with no model calls. Backs the CLI verify command.
func VerifySeparation(trainPath, testPath, storePath string) error {
	train, err := datasets.LoadIssueTypes(trainPath)
	if err != nil {
		return err
	}
	test, err := datasets.LoadIssueTypes(testPath)
	if err != nil {
		return err
	}
	store, err := experience.LoadStore(storePath)
	if err != nil {
		return err
	}
	return CheckLeakage(train, test, store)
}
