package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dataval/internal/config"
)

type lintFlags struct {
	config string
	strict bool
	format string
}

func newLintCmd() *cobra.Command {
	var f lintFlags
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate a suite file",
		Long: `Parse a suite file and report configuration errors and warnings without
loading any data.

Examples:
  dataval lint --config suite.yaml
  dataval lint --config suite.yaml --strict --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return lintSuite(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "suite.yaml", "suite file (YAML or JSON)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringVarP(&f.format, "format", "o", "text", "output format: text, json")
	return cmd
}

func lintSuite(cmd *cobra.Command, f lintFlags) error {
	s, err := config.Load(f.config)
	if err != nil {
		return err
	}
	issues := config.ValidateSuite(*s)

	out := cmd.OutOrStdout()
	switch f.format {
	case "json":
		if issues == nil {
			issues = []config.Issue{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(issues); err != nil {
			return err
		}
	case "", "text":
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: ok\n", f.config)
		}
		for _, iss := range issues {
			fmt.Fprintln(out, iss.Error())
		}
	default:
		return fmt.Errorf("unknown format %q", f.format)
	}

	if config.HasErrors(issues) || (f.strict && len(issues) > 0) {
		return fmt.Errorf("%s: %d issue(s)", f.config, len(issues))
	}
	return nil
}
