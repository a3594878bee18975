package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/swexp-go/pkg/experience"
)

func NewMergeCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "merge <base-store> <incoming-store>",
		Short: "Merge two record stores by problem ID",
		Long: `Union two record stores from separate mining passes. Keys are problem IDs;
on a collision the incoming store wins. In normal operation each problem is
mined exactly once, so collisions indicate a re-run of the same problems.`,
		Example: `  swexp-cli merge store_a.json store_b.json --out merged.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := experience.LoadStore(args[0])
			if err != nil {
				return err
			}
			incoming, err := experience.LoadStore(args[1])
			if err != nil {
				return err
			}

			merged := experience.MergeStores(base, incoming)
			if err := merged.Save(outPath); err != nil {
				return err
			}

			color.Green("merged %d + %d problems into %d", base.Len(), incoming.Len(), merged.Len())
			fmt.Printf("store written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "merged_store.json", "output store path")

	return cmd
}
