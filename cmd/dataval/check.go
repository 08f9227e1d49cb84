package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dataval/internal/coltypes"
	"dataval/internal/config"
	"dataval/internal/dataset"
	"dataval/internal/suite"
)

type checkFlags struct {
	counts      coltypes.Counts
	schema      []string
	allowExtra  bool
	categorical []string
	comma       string
	format      string
}

func newCheckCmd(rf *rootFlags) *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Check the column types of one file",
		Long: `Load a CSV, JSON or Parquet file (chosen by extension) and run a
column-type check against it.

Examples:
  # Two integer columns and nothing else
  dataval check people.csv --integer-cols 2

  # Explicit schema, extra columns allowed
  dataval check people.csv --schema name=text --schema age=integer --allow-extra-cols`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkFile(cmd, rf, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.counts.Numeric, "numeric-cols", 0, "expected numeric columns (0 = not enforced)")
	fl.IntVar(&f.counts.Integer, "integer-cols", 0, "expected integer columns")
	fl.IntVar(&f.counts.Float, "float-cols", 0, "expected float columns")
	fl.IntVar(&f.counts.Boolean, "boolean-cols", 0, "expected boolean columns")
	fl.IntVar(&f.counts.Categorical, "categorical-cols", 0, "expected categorical columns")
	fl.IntVar(&f.counts.Text, "text-cols", 0, "expected text columns")
	fl.IntVar(&f.counts.Datetime, "datetime-cols", 0, "expected datetime columns")
	fl.StringArrayVar(&f.schema, "schema", nil, "column=type pair; repeat for more columns, order is kept")
	fl.BoolVar(&f.allowExtra, "allow-extra-cols", false, "do not report columns no rule accounts for")
	fl.StringSliceVar(&f.categorical, "categorical", nil, "columns to load as categorical")
	fl.StringVar(&f.comma, "comma", ",", "CSV field delimiter")
	fl.StringVarP(&f.format, "format", "o", suite.FormatText, "output format: text, json, yaml")
	return cmd
}

// parseSchema turns name=type flags into an ordered schema.
func parseSchema(pairs []string) (coltypes.Schema, error) {
	out := make(coltypes.Schema, 0, len(pairs))
	for _, p := range pairs {
		name, typ, ok := strings.Cut(p, "=")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("--schema %q: want column=type", p)
		}
		out = append(out, coltypes.Entry(name, typ))
	}
	return out, nil
}

// parserFor picks a parser from the file extension.
func parserFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".ndjson", ".jsonl":
		return config.ParserJSON
	case ".parquet":
		return config.ParserParquet
	}
	return config.ParserCSV
}

func checkFile(cmd *cobra.Command, rf *rootFlags, f checkFlags, path string) error {
	log, err := rf.logger("", "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	schema, err := parseSchema(f.schema)
	if err != nil {
		return err
	}
	opts := coltypes.Options{Counts: f.counts, Schema: schema, AllowExtraCols: f.allowExtra}

	categorical := make([]any, len(f.categorical))
	for i, c := range f.categorical {
		categorical[i] = c
	}
	d := config.Dataset{
		Name:   filepath.Base(path),
		Source: config.Source{Kind: config.SourceFile, Path: path},
		Parser: config.Parser{Kind: parserFor(path), Options: config.Options{
			"comma":        f.comma,
			"categorical":  categorical,
			"allow_arrays": true,
		}},
	}
	ds, err := (&suite.Runner{Log: log}).Load(cmdContext(cmd), d)
	if err != nil {
		return err
	}
	log.Debug("file loaded", zap.String("path", path), zap.Int("rows", ds.Rows()), zap.Int("columns", ds.Width()))

	rep, err := coltypes.Check(ds, opts)
	if err != nil {
		return err
	}
	if err := writeCheckReport(cmd, ds, rep, f.format); err != nil {
		return err
	}
	if rep.Outcome == coltypes.OutcomeFail {
		return errChecksFailed
	}
	return nil
}

func writeCheckReport(cmd *cobra.Command, ds *dataset.Dataset, rep *coltypes.Report, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "", suite.FormatText:
		fmt.Fprintf(out, "%d rows x %d columns\n", ds.Rows(), ds.Width())
		fmt.Fprintln(out, rep.Message())
		return nil
	case suite.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case suite.FormatYAML:
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
