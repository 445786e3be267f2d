package cli

import (
	"errors"
	"fmt"

	"github.com/eunmann/fsfixture/pkg/fileutil"
	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/eunmann/fsfixture/pkg/inventory"
	"github.com/spf13/cobra"
)

func newInventoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory ROOT",
		Short: "Export a listing of a tree",
		Long: `Export one row per directory and file below ROOT with its relative path,
kind, size and depth. The format is taken from --format or else from the
output file extension (.parquet, .csv, .csv.zst).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.v.GetString("output")
			if out == "" {
				return errors.New("--output is required")
			}
			if fileutil.Exists(out) && !a.v.GetBool("force") {
				return fmt.Errorf("output %s exists, use --force to replace it", out)
			}

			var (
				format inventory.Format
				err    error
			)
			if name := a.v.GetString("format"); name != "" {
				format, err = inventory.ParseFormat(name)
			} else {
				format, err = inventory.FormatFromPath(out)
			}
			if err != nil {
				return err
			}

			stats, err := inventory.Export(cmd.Context(), args[0], out, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s directories, %s files, %s\n",
				out, humanfmt.Count(stats.Dirs), humanfmt.Count(stats.Files), humanfmt.Bytes(stats.Bytes))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file")
	cmd.Flags().String("format", "", "parquet, csv or csv.zst (default: from output extension)")
	cmd.Flags().Bool("force", false, "replace an existing output file")
	return cmd
}
