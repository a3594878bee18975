package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/swexp-go/cmd/swexp-cli/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "swexp-cli",
	Short: "Experience mining and retrieval for automated bug fixing",
	Long: `A command-line interface for the swexp-go experience pipeline.

The CLI covers the offline half of the pipeline and its audits:
- Mine finished agent trajectories into an experience record store
- Verify train/test separation before any retrieval runs
- Preview the exact experience block a problem would receive
- Merge record stores from separate mining passes`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(
		commands.NewMineCommand(),
		commands.NewVerifyCommand(),
		commands.NewRetrieveCommand(),
		commands.NewMergeCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the CLI version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(rootCmd.Version)
			},
		},
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
