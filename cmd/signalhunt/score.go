package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/ahrav/go-signalhunt/infrastructure/ingest"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

func runScore(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	input := fs.String("input", "-", "Measurement log CSV, or - for stdin")
	format := fs.String("format", "text", "Output format: text or json")
	breakdown := fs.Bool("breakdown", false, "Include per-category awards in text output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("%w: invalid -format %q", errUsage, *format)
	}

	logger, err := common.logger(stderr)
	if err != nil {
		return err
	}
	event, err := common.event(ctx)
	if err != nil {
		return err
	}

	in, err := openInput(*input, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	rows, err := ingest.ReadRows(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", *input, err)
	}

	scorer, err := scoring.NewScorer(event.Rules, scoring.WithLogger(logger))
	if err != nil {
		return err
	}
	report, err := scorer.Report(ctx, rows)
	if err != nil {
		return err
	}

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeReportText(stdout, report, *breakdown)
}

// writeReportText renders the standings as an aligned table.
func writeReportText(w io.Writer, report *scoring.Report, breakdown bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tTOTAL\tMEASUREMENTS\tAREAS")
	for _, t := range report.Teams {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n",
			t.Rank, t.Team, formatPoints(t.Total), t.MeasurementCount, t.AreaCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if breakdown {
		for _, t := range report.Teams {
			fmt.Fprintf(w, "\n%s\n", t.Team)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, name := range sortedKeys(t.Awards) {
				fmt.Fprintf(tw, "  %s\t%s\n", name, formatPoints(t.Awards[name]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(w, "\n%d rows scored, %d skipped", report.RowsScored, report.RowsSkipped)
	if n := len(report.UnknownTags); n > 0 {
		fmt.Fprintf(w, ", %d unknown tags ignored", n)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func formatPoints(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func sortedKeys(m map[string]float64) []string { return slices.Sorted(maps.Keys(m)) }
