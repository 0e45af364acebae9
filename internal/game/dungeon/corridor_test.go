package dungeon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rowEmpty(m *Map, x1, x2, y int) bool {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if kind, _ := m.TileAt(Pos(x, y)); kind != Empty {
			return false
		}
	}
	return true
}

func colEmpty(m *Map, y1, y2, x int) bool {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if kind, _ := m.TileAt(Pos(x, y)); kind != Empty {
			return false
		}
	}
	return true
}

func TestCarveH(t *testing.T) {
	m := NewMap(Wall, Position{})
	carveH(m, 3, 8, 5)
	assert.True(t, rowEmpty(m, 3, 8, 5))
	kind, _ := m.TileAt(Pos(2, 5))
	assert.Equal(t, Wall, kind)
	kind, _ = m.TileAt(Pos(9, 5))
	assert.Equal(t, Wall, kind)
}

func TestCarveHReversedArgs(t *testing.T) {
	m := NewMap(Wall, Position{})
	carveH(m, 8, 3, 5)
	assert.True(t, rowEmpty(m, 3, 8, 5))
}

func TestCarveVReversedArgs(t *testing.T) {
	m := NewMap(Wall, Position{})
	carveV(m, 12, 4, 7)
	assert.True(t, colEmpty(m, 4, 12, 7))
}

func TestCarveCorridor_LShape(t *testing.T) {
	m := NewMap(Wall, Position{})
	from, to := Pos(25, 10), Pos(6, 30)
	carveCorridor(m, from, to)

	assert.True(t, rowEmpty(m, 6, 25, 10), "horizontal run at the first room's row")
	assert.True(t, colEmpty(m, 10, 30, 6), "vertical run at the second room's column")
	kind, _ := m.TileAt(Pos(25, 30))
	assert.Equal(t, Wall, kind, "the other elbow stays closed")
}

func TestCarveBlock(t *testing.T) {
	m := NewMap(Wall, Position{})
	carveBlock(m, Pos(10, 10))
	for y := 9; y <= 11; y++ {
		assert.True(t, rowEmpty(m, 9, 11, y))
	}
	kind, _ := m.TileAt(Pos(12, 10))
	assert.Equal(t, Wall, kind)
}
