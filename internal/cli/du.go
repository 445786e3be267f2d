package cli

import (
	"fmt"

	"github.com/eunmann/fsfixture/pkg/duscan"
	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/spf13/cobra"
)

func newDuCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "du ROOT",
		Short: "Report the disk usage of a tree",
		Long: `Report the disk usage of a tree like "du -sh", scanning directories in
parallel. Hard links are counted once. Unreadable entries are logged and
skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			res, err := duscan.Scan(cmd.Context(), root, duscan.Options{
				MaxHandles: a.v.GetInt("max-handles"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", humanfmt.DuSize(res.Blocks), root)
			return nil
		},
	}
	cmd.Flags().Int("max-handles", duscan.DefaultMaxHandles, "maximum open directory handles")
	return cmd
}
