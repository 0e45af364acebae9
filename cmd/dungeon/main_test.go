package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cryptdancer/internal/game/dungeon"
)

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-seed", "12"}, &out))

	rows := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, rows, dungeon.Size)
	assert.Equal(t, dungeon.Generate(12).Repr(), strings.Join(rows, ""))
}

func TestRunYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-seed", "4294967295", "-format", "yaml"}, &out))

	var d dump
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &d))
	m := dungeon.Generate(4294967295)
	assert.Equal(t, uint32(4294967295), d.Seed)
	assert.Equal(t, point{X: 18, Y: 18}, d.Exit)
	assert.Equal(t, point{X: m.PlayerPos().X, Y: m.PlayerPos().Y}, d.Player)
	assert.Len(t, d.Diamonds, dungeon.DiamondCount)
	assert.Equal(t, m.Rows(), d.Rows)
}

func TestRunRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-seed", "4294967296"}, &out))
	assert.Error(t, run([]string{"-format", "json"}, &out))
}
