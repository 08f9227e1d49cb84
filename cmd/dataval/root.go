package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataval/internal/logging"
)

// errChecksFailed makes the process exit non-zero without an extra message;
// the report already says what failed.
var errChecksFailed = errors.New("one or more checks did not pass")

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	cmd := &cobra.Command{
		Use:   "dataval",
		Short: "Validate tabular datasets against column-type rules",
		Long: `dataval checks that the columns of a dataset have the logical types you
expect: counts per type (numeric, integer, float, boolean, categorical, text,
datetime), an explicit column schema, and no unaccounted columns. Suites add
missing-value, outlier and categorical-format checks over files, HTTP
downloads and database tables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the suite)")
	cmd.PersistentFlags().StringVar(&rf.logFormat, "log-format", "", "log format: console, json (overrides the suite)")

	cmd.AddCommand(
		newRunCmd(&rf),
		newCheckCmd(&rf),
		newProbeCmd(&rf),
		newLintCmd(),
		newVersionCmd(),
	)
	return cmd
}

// logger builds the process logger. Flags win over the suite's log block.
func (rf *rootFlags) logger(level, format string) (*zap.Logger, error) {
	if rf.logLevel != "" {
		level = rf.logLevel
	}
	if rf.logFormat != "" {
		format = rf.logFormat
	}
	if format == "" {
		format = logging.FormatConsole
	}
	return logging.New(level, format)
}

// Execute runs the root command and exits 1 on any error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
