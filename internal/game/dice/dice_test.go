package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cryptdancer/internal/game/dice"
)

func TestSeededSource_SameSeedSameSequence(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 200; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000), "draw %d diverged", i)
	}
}

func TestSeededSource_DifferentSeedsDiverge(t *testing.T) {
	a := dice.NewSeededSource(1)
	b := dice.NewSeededSource(2)
	same := true
	for i := 0; i < 32; i++ {
		if a.Intn(1<<30) != b.Intn(1<<30) {
			same = false
		}
	}
	assert.False(t, same, "seeds 1 and 2 produced identical sequences")
}

func TestSeededSource_PanicsOnNonPositive(t *testing.T) {
	src := dice.NewSeededSource(0)
	assert.Panics(t, func() { src.Intn(0) })
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(-1) })
}

func TestRange_PanicsOnEmptyInterval(t *testing.T) {
	assert.Panics(t, func() { dice.Range(dice.NewSeededSource(0), 5, 5) })
}

func TestProperty_RangeStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint32().Draw(rt, "seed")
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		width := rapid.IntRange(1, 100).Draw(rt, "width")
		src := dice.NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			v := dice.Range(src, lo, lo+width)
			if v < lo || v >= lo+width {
				rt.Fatalf("Range(%d, %d) returned %d", lo, lo+width, v)
			}
		}
	})
}

func TestProperty_CryptoSourceInBounds(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1<<20).Draw(rt, "n")
		v := src.Intn(n)
		if v < 0 || v >= n {
			rt.Fatalf("Intn(%d) returned %d", n, v)
		}
	})
}

func TestLoggedSource_CountsDraws(t *testing.T) {
	logged := dice.NewLoggedSource(dice.NewSeededSource(7), zaptest.NewLogger(t))
	plain := dice.NewSeededSource(7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, plain.Intn(10), logged.Intn(10))
	}
	assert.Equal(t, int64(5), logged.Draws())
}
