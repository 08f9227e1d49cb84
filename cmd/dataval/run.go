package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataval/internal/config"
	"dataval/internal/metrics"
	"dataval/internal/suite"

	_ "dataval/internal/storage/all"
)

type runFlags struct {
	config  string
	format  string
	workers int
}

func newRunCmd(rf *rootFlags) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the checks of a suite file",
		Long: `Load every dataset of a suite file, run its checks and print a report.

The command exits with status 1 when any check fails or errors.

Examples:
  # Text report
  dataval run --config suite.yaml

  # JSON report for CI
  dataval run --config suite.yaml --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuite(cmd, rf, f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "suite.yaml", "suite file (YAML or JSON)")
	cmd.Flags().StringVarP(&f.format, "format", "o", suite.FormatText, "report format: text, json, yaml")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "datasets checked in parallel (overrides runtime.workers)")
	return cmd
}

func runSuite(cmd *cobra.Command, rf *rootFlags, f runFlags) error {
	s, err := config.Load(f.config)
	if err != nil {
		return err
	}
	log, err := rf.logger(s.Log.Level, s.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, iss := range config.ValidateSuite(*s) {
		if iss.Severity == config.SeverityWarning {
			log.Warn("suite lint", zap.String("path", iss.Path), zap.String("message", iss.Message))
		}
	}

	backend, err := suite.MetricsBackend(s.Metrics, s.Name)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if backend != nil {
		metrics.SetBackend(backend)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Warn("metrics flush failed", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := suite.NewRunner(log, s.Runtime)
	if f.workers > 0 {
		runner.Workers = f.workers
	}
	res, err := runner.Run(ctx, *s)
	if err != nil && res == nil {
		return err
	}
	if werr := suite.WriteReport(cmd.OutOrStdout(), res, f.format); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if !res.OK() {
		return errChecksFailed
	}
	return nil
}

// cmdContext returns the command's context or Background when run outside
// Execute (tests call RunE directly).
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
