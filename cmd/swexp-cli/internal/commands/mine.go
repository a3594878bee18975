package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/experience"
	"github.com/XiaoConstantine/swexp-go/pkg/pipeline"
)

func NewMineCommand() *cobra.Command {
	var (
		configPath     string
		problemsPath   string
		issueTypesPath string
		trajectoryDir  string
		verdictsPath   string
		outPath        string
	)

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine finished trajectories into an experience record store",
		Long: `Run the offline extraction phase: for every trajectory, an LLM distills
either why the attempt worked or why it failed into one experience record,
keyed by the source problem and appended to the store.

Problems without a harness verdict are treated as not resolved; their records
keep verdict_source "defaulted" so a measured failure stays distinguishable
from an untested patch. Extraction failures skip the problem and never abort
the batch.`,
		Example: `  # Mine with measured verdicts
  swexp-cli mine --problems swe_bench.parquet --issue-types issue_types_train.json \
    --trajectories runs/trajectories --verdicts verdicts.json --out experience_store.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if issueTypesPath == "" {
				issueTypesPath = cfg.Paths.TrainIssueTypes
			}
			if outPath == "" {
				outPath = cfg.Paths.RecordStore
			}

			problems, err := loadProblems(problemsPath)
			if err != nil {
				return err
			}
			issues, err := datasets.LoadIssueTypes(issueTypesPath)
			if err != nil {
				return err
			}
			trajectories, err := datasets.LoadTrajectories(trajectoryDir)
			if err != nil {
				return err
			}
			var verdicts datasets.VerdictMap
			if verdictsPath != "" {
				if verdicts, err = datasets.LoadVerdicts(verdictsPath); err != nil {
					return err
				}
			}

			llm, embedder, err := buildLLMs(cfg)
			if err != nil {
				return err
			}

			store := experience.NewStore()
			driver := pipeline.FromConfig(cfg, llm, embedder, store)
			inputs := pipeline.PrepareMineInputs(issues, problems, trajectories, verdicts)

			progress := driver.MineAll(cmd.Context(), inputs)
			if err := store.Save(outPath); err != nil {
				return err
			}

			color.Green("mining complete: %s", progress.Summary())
			fmt.Printf("store written to %s (%d problems)\n", outPath, store.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: $SWEXP_CONFIG or ./swexp.yaml)")
	cmd.Flags().StringVar(&problemsPath, "problems", "", "benchmark problems file (.parquet or .jsonl)")
	cmd.Flags().StringVar(&issueTypesPath, "issue-types", "", "train issue-type side-file")
	cmd.Flags().StringVar(&trajectoryDir, "trajectories", "", "directory of trajectory JSON files")
	cmd.Flags().StringVar(&verdictsPath, "verdicts", "", "harness verdict file (optional)")
	cmd.Flags().StringVar(&outPath, "out", "", "output record store path")
	_ = cmd.MarkFlagRequired("problems")
	_ = cmd.MarkFlagRequired("trajectories")

	return cmd
}
