package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ahrav/go-signalhunt/infrastructure/ingest"
	"github.com/ahrav/go-signalhunt/internal/application"
)

func runEnrich(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	input := fs.String("input", "-", "Sightings CSV, or - for stdin")
	output := fs.String("output", "-", "Rows CSV to write, or - for stdout")
	concurrency := fs.Int("concurrency", application.DefaultConcurrency, "Sightings resolved at once")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.config == "" {
		return fmt.Errorf("%w: enrich requires -config with block_groups", errUsage)
	}

	logger, err := common.logger(stderr)
	if err != nil {
		return err
	}
	event, err := common.event(ctx)
	if err != nil {
		return err
	}
	areas, err := event.AreaResolver()
	if err != nil {
		return err
	}
	nodes, err := event.NodeResolver()
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "resolvers ready", "areas", areas.Len(), "nodes", nodes.Nodes())

	in, err := openInput(*input, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	sightings, err := ingest.ReadSightings(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", *input, err)
	}

	enricher, err := application.NewEnricher(areas, nodes,
		application.WithConcurrency(*concurrency),
		application.WithEnricherLogger(logger),
	)
	if err != nil {
		return err
	}
	rows, err := enricher.Enrich(ctx, sightings)
	if err != nil {
		return err
	}

	if *output == "" || *output == "-" {
		return ingest.WriteRows(stdout, rows, true)
	}
	f, err := os.Create(filepath.Clean(*output))
	if err != nil {
		return err
	}
	if err := ingest.WriteRows(f, rows, true); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
