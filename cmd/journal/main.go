// Package main provides a command that reads finished sessions back out of
// the session journal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cryptdancer/internal/config"
	"github.com/cory-johannsen/cryptdancer/internal/storage/postgres"
)

const queryTimeout = 10 * time.Second

type record struct {
	ID                string        `yaml:"id"`
	Seed              uint32        `yaml:"seed"`
	Outcome           string        `yaml:"outcome"`
	DiamondsCollected int           `yaml:"diamonds_collected"`
	Moves             int           `yaml:"moves"`
	Digs              int           `yaml:"digs"`
	RemoteAddr        string        `yaml:"remote_addr"`
	StartedAt         time.Time     `yaml:"started_at"`
	EndedAt           time.Time     `yaml:"ended_at"`
	Duration          time.Duration `yaml:"duration"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	recent := fs.Int("recent", 10, "number of most recently ended sessions to list")
	idFlag := fs.String("id", "", "show only the session with this id")
	format := fs.String("format", "text", "output format: text or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *recent < 1 {
		return fmt.Errorf("recent must be at least 1, got %d", *recent)
	}
	if *format != "text" && *format != "yaml" {
		return fmt.Errorf("unknown format %q: must be text or yaml", *format)
	}
	var id uuid.UUID
	if *idFlag != "" {
		parsed, err := uuid.Parse(*idFlag)
		if err != nil {
			return fmt.Errorf("parsing session id: %w", err)
		}
		id = parsed
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.CheckSchema(ctx); err != nil {
		return err
	}
	repo := postgres.NewSessionRepository(pool.DB())

	var results []postgres.Result
	if id != uuid.Nil {
		res, err := repo.Get(ctx, id)
		if errors.Is(err, postgres.ErrSessionNotFound) {
			return fmt.Errorf("session %s: %w", id, err)
		}
		if err != nil {
			return err
		}
		results = []postgres.Result{res}
	} else {
		results, err = repo.Recent(ctx, *recent)
		if err != nil {
			return err
		}
	}
	return write(out, *format, results)
}

func write(out io.Writer, format string, results []postgres.Result) error {
	if format == "yaml" {
		recs := make([]record, 0, len(results))
		for _, r := range results {
			recs = append(recs, record{
				ID:                r.ID.String(),
				Seed:              r.Seed,
				Outcome:           r.Outcome,
				DiamondsCollected: r.DiamondsCollected,
				Moves:             r.Moves,
				Digs:              r.Digs,
				RemoteAddr:        r.RemoteAddr,
				StartedAt:         r.StartedAt.UTC(),
				EndedAt:           r.EndedAt.UTC(),
				Duration:          r.Duration(),
			})
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("encoding sessions: %w", err)
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEED\tOUTCOME\tDIAMONDS\tMOVES\tDIGS\tENDED\tDURATION\tREMOTE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.ID, r.Seed, r.Outcome, r.DiamondsCollected, r.Moves, r.Digs,
			r.EndedAt.UTC().Format(time.RFC3339), r.Duration(), r.RemoteAddr)
	}
	return tw.Flush()
}
