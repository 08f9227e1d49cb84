package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataval/internal/datasource/file"
	"dataval/internal/datasource/httpds"
	"dataval/internal/probe"
)

type probeFlags struct {
	list      string
	bytes     int
	delimiter string
	name      string
	format    string
	save      string
	insecure  bool
}

func newProbeCmd(rf *rootFlags) *cobra.Command {
	var f probeFlags
	cmd := &cobra.Command{
		Use:   "probe [FILE|URL]",
		Short: "Infer column kinds and logical types from the head of a CSV",
		Long: `Sample the start of a local or remote CSV file and report each column's
inferred kind and the logical types it satisfies. With --format json or yaml
the output is a starter suite pinning what was found.

Examples:
  dataval probe people.csv
  dataval probe https://example.com/people.csv --format yaml > suite.yaml
  dataval probe --list sources.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sources []string
			switch {
			case f.list != "":
				l, err := file.ReadList(f.list)
				if err != nil {
					return err
				}
				sources = l
			case len(args) == 1:
				sources = args
			default:
				return errors.New("probe needs a FILE or URL argument, or --list")
			}
			return probeSources(cmd, rf, f, sources)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.list, "list", "", "file with one path or URL per line")
	fl.IntVar(&f.bytes, "bytes", probe.DefaultMaxBytes, "bytes to sample from the start of each source")
	fl.StringVar(&f.delimiter, "delimiter", ",", `field delimiter; "\t" and "tab" mean TAB`)
	fl.StringVar(&f.name, "name", "", "dataset name in the starter suite (default: derived from the source)")
	fl.StringVarP(&f.format, "format", "o", probe.FormatText, "output: text, json, yaml")
	fl.StringVar(&f.save, "save", "", "directory that receives a copy of each sample")
	fl.BoolVar(&f.insecure, "allow-insecure", false, "skip TLS certificate verification")
	return cmd
}

func probeSources(cmd *cobra.Command, rf *rootFlags, f probeFlags, sources []string) error {
	log, err := rf.logger("", "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client := httpds.NewClient(httpds.Config{MaxRetries: 2, InsecureSkipVerify: f.insecure, Logger: log})
	out := cmd.OutOrStdout()
	var failed int
	for _, src := range sources {
		name := f.name
		if len(sources) > 1 {
			name = ""
		}
		res, err := probe.Probe(cmdContext(cmd), probe.Options{
			Source:    src,
			MaxBytes:  f.bytes,
			Delimiter: probe.DecodeDelimiter(f.delimiter),
			Name:      name,
			Format:    f.format,
			SampleDir: f.save,
			Client:    client,
		})
		if err != nil {
			log.Error("probe failed", zap.String("source", src), zap.Error(err))
			failed++
			continue
		}
		if len(sources) > 1 && f.format == probe.FormatText {
			fmt.Fprintf(out, "# %s\n", src)
		}
		if _, err := out.Write(res.Body); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources could not be probed", failed, len(sources))
	}
	return nil
}
