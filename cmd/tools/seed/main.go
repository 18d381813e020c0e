// Package main is a development tool that fills the activity table with
// generated dummy data so the analyzer and regression paths can be
// exercised without a real ingest pipeline.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./cmd/tools/seed -days 14 -seed 42
//
// With -dry-run the samples are generated and summarized but not written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sipwatch/internal/dataset"
	"sipwatch/internal/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		days    = flag.Int("days", 14, "number of days to generate, ending today")
		seed    = flag.Uint64("seed", 42, "random seed for reproducible datasets")
		authors = flag.String("authors", "", "comma-separated author names (default: built-in roster)")
		dryRun  = flag.Bool("dry-run", false, "generate and summarize without writing to the database")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -*days)

	cfg := dataset.GeneratorConfig{
		Start: start,
		End:   end,
		Seed:  *seed,
	}
	if *authors != "" {
		cfg.Authors = splitAuthors(*authors)
	}

	samples := dataset.NewGenerator(cfg).Generate()
	logger.Info("dataset generated",
		"samples", len(samples),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"seed", *seed,
	)

	if *dryRun {
		logger.Info("dry run, skipping insert")
		return nil
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required (or pass -dry-run)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	repo := db.NewActivityRepository(pool)
	if err := repo.InsertSamples(ctx, samples); err != nil {
		return fmt.Errorf("inserting samples: %w", err)
	}

	logger.Info("seed complete", "inserted", len(samples))
	return nil
}

func splitAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
