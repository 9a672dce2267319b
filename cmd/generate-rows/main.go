package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahrav/go-signalhunt/infrastructure/ingest"
	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/testutils"
)

func main() {
	defaults := testutils.DefaultGeneratorConfig()
	var (
		rows       = flag.Int("rows", defaults.Rows, "Number of measurement rows to generate")
		teams      = flag.Int("teams", defaults.Teams, "Number of distinct teams")
		areas      = flag.Int("areas", defaults.Areas, "Number of distinct block groups")
		blankRate  = flag.Float64("blank-team-rate", defaults.BlankTeamRate, "Fraction of rows without a team")
		tagRate    = flag.Float64("tag-rate", defaults.TagRate, "Chance a row carries bonus tags")
		tags       = flag.String("tags", strings.Join(defaults.Tags, ";"), "Semicolon separated bonus tag pool")
		seed       = flag.Int64("seed", 0, "Random seed; 0 uses the current time")
		outputPath = flag.String("output", "testdata/rows/sample_rows.csv", "Output file path")
	)
	flag.Parse()

	cfg := testutils.GeneratorConfig{
		Rows:          *rows,
		Teams:         *teams,
		Areas:         *areas,
		BlankTeamRate: *blankRate,
		TagRate:       *tagRate,
	}
	for tag := range strings.SplitSeq(*tags, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			cfg.Tags = append(cfg.Tags, tag)
		}
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	generated := testutils.GenerateRows(cfg, s)

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	f, err := os.Create(filepath.Clean(*outputPath))
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := ingest.WriteRows(f, generated, true); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to write rows: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}

	teamSet := make(map[string]struct{})
	for _, r := range generated {
		if team := strings.TrimSpace(r[domain.ColTeam]); team != "" {
			teamSet[team] = struct{}{}
		}
	}

	fmt.Printf("Generated measurement log:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Seed: %d\n", s)
	fmt.Printf("- Rows: %d\n", len(generated))
	fmt.Printf("- Teams: %d\n", len(teamSet))
}
