// Package cli implements the command-line interface for fsfixture.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/eunmann/fsfixture/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

// EnvPrefix prefixes environment overrides, e.g. FSFIXTURE_WIDE_DIRS.
const EnvPrefix = "FSFIXTURE"

// app holds state shared by the commands of one invocation.
type app struct {
	v         *viper.Viper
	logCloser io.Closer
}

// NewRootCmd creates the root command with all subcommands.
//
// Every flag can also be set through the environment (FSFIXTURE_ prefix,
// dashes become underscores) or a YAML file passed with --config, using the
// flag name as key. Flags win over the environment, which wins over the file.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "fsfixture",
		Short: "Generate filesystem benchmark fixture trees",
		Long: `fsfixture builds synthetic directory trees for filesystem benchmarks.

It creates a "wide" tree of many sibling directories full of small files and a
"deep" tree branching many levels deep, writing with bounded concurrency.
Existing non-empty trees are left untouched.

Use subcommands to perform different operations:
  - generate: build the wide and deep fixture trees
  - du: report the disk usage of a tree
  - inventory: export a listing of a tree as Parquet or CSV`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.Bool("debug", false, "enable debug logging")
	pf.Bool("human", true, "human-readable console logs instead of JSON")
	pf.String("log-file", "", "also write JSON logs to this file, rotated by size")
	pf.Int("log-max-size-mb", 100, "log file size that triggers rotation")
	pf.Int("log-max-backups", 3, "rotated log files to keep")
	pf.Int("log-max-age-days", 28, "days to keep rotated log files")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newDuCmd(a))
	root.AddCommand(newInventoryCmd(a))
	return root
}

// init binds the executing command's flags, reads the config file, and sets
// up logging.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	a.logCloser = logging.Init(logging.Options{
		Debug:          a.v.GetBool("debug"),
		Human:          a.v.GetBool("human"),
		File:           a.v.GetString("log-file"),
		FileMaxSizeMB:  a.v.GetInt("log-max-size-mb"),
		FileMaxBackups: a.v.GetInt("log-max-backups"),
		FileMaxAgeDays: a.v.GetInt("log-max-age-days"),
	})
	return nil
}

func (a *app) close() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

// Run executes the CLI with the given arguments.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

// Execute runs the CLI on the process arguments with styled help and errors.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, NewRootCmd())
}
