package suite

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteReport renders res to w in the given format.
func WriteReport(w io.Writer, res *Result, format string) error {
	switch format {
	case "", FormatText:
		return writeText(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeText(w io.Writer, res *Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "suite %s (run %s)\n", res.Suite, res.RunID)
	for _, d := range res.Datasets {
		if d.Error != "" {
			fmt.Fprintf(tw, "\n%s\t[%s]\tload error: %s\n", d.Name, d.Source, d.Error)
		} else {
			fmt.Fprintf(tw, "\n%s\t[%s]\t%d rows x %d columns\n", d.Name, d.Source, d.Rows, d.Columns)
		}
		for _, c := range d.Checks {
			target := c.Check
			if c.Column != "" {
				target += "(" + c.Column + ")"
			}
			msg := c.Message
			if c.Status == StatusError {
				msg = c.Error
			}
			lines := strings.Split(msg, "\n")
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", strings.ToUpper(string(c.Status)), target, lines[0])
			for _, l := range lines[1:] {
				fmt.Fprintf(tw, "  \t\t%s\n", l)
			}
			for _, n := range c.Notes {
				fmt.Fprintf(tw, "  \t\t- %s\n", n)
			}
		}
	}
	fmt.Fprintf(tw, "\n%d passed, %d failed, %d errored\n", res.Passed, res.Failed, res.Errored)
	return tw.Flush()
}
