// Package levels chooses the dungeon seed of each new session.
package levels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cryptdancer/internal/config"
	"github.com/cory-johannsen/cryptdancer/internal/game/dice"
)

// Level is a named dungeon seed.
type Level struct {
	Name string `yaml:"name"`
	Seed uint32 `yaml:"seed"`
}

type levelsFile struct {
	Levels []Level `yaml:"levels"`
}

// LoadFromBytes parses a levels document.
//
// Precondition: data must be YAML of the form "levels: [{name, seed}, ...]".
// Postcondition: Returns at least one level with unique, non-empty names, or an error.
func LoadFromBytes(data []byte) ([]Level, error) {
	var f levelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing levels: %w", err)
	}
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("levels: list must not be empty")
	}
	seen := make(map[string]bool, len(f.Levels))
	for i, l := range f.Levels {
		if l.Name == "" {
			return nil, fmt.Errorf("levels[%d]: name must not be empty", i)
		}
		if seen[l.Name] {
			return nil, fmt.Errorf("levels[%d]: duplicate name %q", i, l.Name)
		}
		seen[l.Name] = true
	}
	return f.Levels, nil
}

// LoadFile reads and parses the levels file at path.
func LoadFile(path string) ([]Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading levels file %s: %w", path, err)
	}
	levels, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return levels, nil
}

// Rotation yields the level for each new session. It is used by the
// simulation loop only and is not safe for concurrent use.
type Rotation struct {
	levels []Level
	next   int
	src    dice.Source
}

// NewCycle cycles through levels in order, starting over after the last.
//
// Precondition: levels must be non-empty.
func NewCycle(levels []Level) *Rotation {
	if len(levels) == 0 {
		panic("levels: NewCycle called with no levels")
	}
	return &Rotation{levels: levels}
}

// NewRandom draws a fresh seed from src for every session.
func NewRandom(src dice.Source) *Rotation {
	return &Rotation{src: src}
}

// NewFixed always yields seed.
func NewFixed(seed uint32) *Rotation {
	return NewCycle([]Level{{Name: fmt.Sprintf("seed-%d", seed), Seed: seed}})
}

// FromConfig builds the rotation selected by cfg: the levels file when set,
// else random seeds when enabled, else the fixed seed.
//
// Postcondition: Returns a usable Rotation or an error from loading the levels file.
func FromConfig(cfg config.GameConfig) (*Rotation, error) {
	switch {
	case cfg.LevelsFile != "":
		levels, err := LoadFile(cfg.LevelsFile)
		if err != nil {
			return nil, err
		}
		return NewCycle(levels), nil
	case cfg.RandomSeed:
		return NewRandom(dice.NewCryptoSource()), nil
	default:
		return NewFixed(cfg.Seed), nil
	}
}

// Next returns the level for the next session.
func (r *Rotation) Next() Level {
	if r.src != nil {
		seed := uint32(r.src.Intn(1<<16))<<16 | uint32(r.src.Intn(1<<16))
		return Level{Name: fmt.Sprintf("random-%d", seed), Seed: seed}
	}
	l := r.levels[r.next]
	r.next = (r.next + 1) % len(r.levels)
	return l
}
