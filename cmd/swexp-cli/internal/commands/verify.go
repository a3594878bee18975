package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/swexp-go/pkg/pipeline"
)

func NewVerifyCommand() *cobra.Command {
	var (
		configPath string
		trainPath  string
		testPath   string
		storePath  string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify train/test separation from the on-disk artifacts",
		Long: `Check, without any model calls, that no problem ID appears in both the
train and test issue-type mappings and that no test problem is keyed in the
record store. Retrieval against test problems must never start while either
condition is violated.`,
		Example: `  swexp-cli verify --train issue_types_train.json --test issue_types_test.json \
    --store experience_store.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if trainPath == "" {
				trainPath = cfg.Paths.TrainIssueTypes
			}
			if testPath == "" {
				testPath = cfg.Paths.TestIssueTypes
			}
			if storePath == "" {
				storePath = cfg.Paths.RecordStore
			}

			if err := pipeline.VerifySeparation(trainPath, testPath, storePath); err != nil {
				color.Red("separation check FAILED")
				return err
			}
			color.Green("train/test separation verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: $SWEXP_CONFIG or ./swexp.yaml)")
	cmd.Flags().StringVar(&trainPath, "train", "", "train issue-type side-file")
	cmd.Flags().StringVar(&testPath, "test", "", "test issue-type side-file")
	cmd.Flags().StringVar(&storePath, "store", "", "record store path")

	return cmd
}
