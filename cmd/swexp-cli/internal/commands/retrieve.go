package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/experience"
	"github.com/XiaoConstantine/swexp-go/pkg/pipeline"
)

func NewRetrieveCommand() *cobra.Command {
	var (
		configPath     string
		storePath      string
		issueTypesPath string
		problemID      string
		issueText      string
	)

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Preview the experience block a problem would receive",
		Long: `Run screen, select and generalize for one issue and print the exact
"***Experience N***" block that would be injected into the agent prompt,
without running an agent. The issue comes either from an issue-type side-file
entry (--id) or directly from --text.`,
		Example: `  # Preview by problem ID
  swexp-cli retrieve --id django__django-11099 --issue-types issue_types_test.json

  # Preview for ad-hoc issue text
  swexp-cli retrieve --text "ordering is lost after slicing a queryset"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if storePath == "" {
				storePath = cfg.Paths.RecordStore
			}
			if issueTypesPath == "" {
				issueTypesPath = cfg.Paths.TestIssueTypes
			}

			if issueText == "" {
				if problemID == "" {
					return errors.New(errors.InvalidInput, "either --id or --text is required")
				}
				issues, err := datasets.LoadIssueTypes(issueTypesPath)
				if err != nil {
					return err
				}
				entry, ok := issues[problemID]
				if !ok {
					return errors.WithFields(
						errors.New(errors.InvalidInput, "problem not found in issue-type file"),
						errors.Fields{"problem_id": problemID, "path": issueTypesPath})
				}
				issueText = entry.IssueText
				fmt.Printf("problem %s (%s)\n\n", problemID, datasets.NormalizeLabel(entry.Classification))
			}

			store, err := experience.LoadStore(storePath)
			if err != nil {
				return err
			}
			llm, embedder, err := buildLLMs(cfg)
			if err != nil {
				return err
			}

			driver := pipeline.FromConfig(cfg, llm, embedder, store)
			block, selection, err := driver.RetrieveBlock(cmd.Context(), issueText)
			if err != nil {
				return err
			}

			color.Cyan("selected record: %s", selection.ProblemID)
			fmt.Printf("rationale: %s\n\n", selection.Rationale)
			fmt.Println(block)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: $SWEXP_CONFIG or ./swexp.yaml)")
	cmd.Flags().StringVar(&storePath, "store", "", "record store path")
	cmd.Flags().StringVar(&issueTypesPath, "issue-types", "", "issue-type side-file for --id lookup")
	cmd.Flags().StringVar(&problemID, "id", "", "problem ID to preview")
	cmd.Flags().StringVar(&issueText, "text", "", "raw issue text to preview")

	return cmd
}
