package cli

import (
	"errors"
	"fmt"

	"github.com/eunmann/fsfixture/internal/logctx"
	"github.com/eunmann/fsfixture/pkg/humanfmt"
	"github.com/eunmann/fsfixture/pkg/metrics"
	"github.com/eunmann/fsfixture/pkg/treegen"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the wide and deep fixture trees",
		Long: `Build the wide and deep fixture trees under --root.

The wide tree is built first, then the deep tree. A tree whose directory
already exists and is non-empty is skipped and reported from configuration.
The first filesystem error aborts the run and leaves a partial tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd)
		},
	}

	addGenerateFlags(cmd.Flags(), treegen.DefaultConfig())
	return cmd
}

// addGenerateFlags registers the generate flags with defaults taken from d.
func addGenerateFlags(f *pflag.FlagSet, d treegen.Config) {
	f.String("root", d.Root, "benchmark root directory")
	f.Int("concurrency", d.Concurrency, "maximum simultaneous file writes")
	f.Int("dir-workers", 0, "directory creation workers (0 = min(32, CPUs+4))")
	f.String("only", "", `build only "wide" or "deep"`)
	f.Int("wide-dirs", d.Wide.Dirs, "wide tree directory count")
	f.Int("wide-files-per-dir", d.Wide.FilesPerDir, "files in each wide directory")
	f.Int("wide-file-size", d.Wide.FileSize, "wide file size in bytes")
	f.Int("wide-batch-size", d.Wide.BatchSize, "wide write tasks submitted per batch")
	f.Int("deep-levels", d.Deep.Levels, "deep tree depth")
	f.Int("deep-branching", d.Deep.Branching, "children of each deep directory")
	f.Int("deep-files-per-dir", d.Deep.FilesPerDir, "files in each deep directory")
	f.Int("deep-batch-size", d.Deep.BatchSize, "deep write tasks submitted per directory chunk")
	f.String("metrics-textfile", "", "write Prometheus metrics to this file when done")
	f.Bool("no-preflight", false, "skip free space and file descriptor checks")
}

// generateConfig assembles the run configuration from flags, environment and
// config file.
func (a *app) generateConfig() treegen.Config {
	v := a.v
	return treegen.Config{
		Root:        v.GetString("root"),
		Concurrency: v.GetInt("concurrency"),
		DirWorkers:  v.GetInt("dir-workers"),
		Only:        v.GetString("only"),
		Wide: treegen.WideConfig{
			Dirs:        v.GetInt("wide-dirs"),
			FilesPerDir: v.GetInt("wide-files-per-dir"),
			FileSize:    v.GetInt("wide-file-size"),
			BatchSize:   v.GetInt("wide-batch-size"),
		},
		Deep: treegen.DeepConfig{
			Levels:      v.GetInt("deep-levels"),
			Branching:   v.GetInt("deep-branching"),
			FilesPerDir: v.GetInt("deep-files-per-dir"),
			BatchSize:   v.GetInt("deep-batch-size"),
		},
	}
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	cfg := a.generateConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := treegen.RunOptions{Preflight: !a.v.GetBool("no-preflight")}
	textfile := a.v.GetString("metrics-textfile")
	if textfile != "" {
		opts.Metrics = metrics.New()
	}

	report, runErr := treegen.Run(cmd.Context(), cfg, opts)
	if textfile != "" {
		if err := opts.Metrics.WriteTextfile(textfile); err != nil {
			runErr = errors.Join(runErr, err)
		} else {
			log := logctx.FromContext(cmd.Context())
			log.Info().Str("path", textfile).Msg("metrics written")
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	for _, r := range report.Results() {
		status := "created"
		if r.Skipped {
			status = "skipped, already exists"
		}
		fmt.Fprintf(out, "%s: %s directories, %s files (%s)\n",
			r.Name, humanfmt.Count(r.Dirs), humanfmt.Count(r.Files), status)
	}
	fmt.Fprintf(out, "total time: %s\n", humanfmt.Duration(report.Elapsed))
	fmt.Fprintf(out, "run id: %s\n", report.RunID)
	return nil
}
