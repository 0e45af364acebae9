// Package main provides a command that prints the dungeon generated for a seed.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cryptdancer/internal/config"
	"github.com/cory-johannsen/cryptdancer/internal/game/dice"
	"github.com/cory-johannsen/cryptdancer/internal/game/dungeon"
	"github.com/cory-johannsen/cryptdancer/internal/observability"
)

type point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type dump struct {
	Seed     uint32   `yaml:"seed"`
	Player   point    `yaml:"player"`
	Exit     point    `yaml:"exit"`
	Diamonds []point  `yaml:"diamonds"`
	Rows     []string `yaml:"rows"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dungeon", flag.ContinueOnError)
	seed := fs.Uint64("seed", 0, "level seed (0-4294967295)")
	format := fs.String("format", "text", "output format: text or yaml")
	verbose := fs.Bool("verbose", false, "log every random draw to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *seed > math.MaxUint32 {
		return fmt.Errorf("seed %d out of range", *seed)
	}

	var src dice.Source = dice.NewSeededSource(uint32(*seed))
	if *verbose {
		logger, err := observability.NewLogger(config.LoggingConfig{Level: "debug", Format: "console"})
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer logger.Sync()
		logged := dice.NewLoggedSource(src, logger)
		defer func() { logger.Info("generation complete", zap.Int64("draws", logged.Draws())) }()
		src = logged
	}
	m := dungeon.GenerateFrom(src)

	switch *format {
	case "text":
		_, err := fmt.Fprintln(out, strings.Join(m.Rows(), "\n"))
		return err
	case "yaml":
		d := dump{
			Seed:   uint32(*seed),
			Player: point{X: m.PlayerPos().X, Y: m.PlayerPos().Y},
			Exit:   point{X: dungeon.ExitPos.X, Y: dungeon.ExitPos.Y},
			Rows:   m.Rows(),
		}
		for _, p := range m.Diamonds() {
			d.Diamonds = append(d.Diamonds, point{X: p.X, Y: p.Y})
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding map: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: must be text or yaml", *format)
	}
}
