package dungeon

import (
	"math"

	"github.com/cory-johannsen/cryptdancer/internal/game/dice"
)

// Generation constants.
const (
	// DiamondCount is the number of diamonds placed on every level.
	DiamondCount = 10
	// MaxSpawnAttempts bounds the rejection sampling of the player spawn.
	MaxSpawnAttempts = 10000

	minStones, maxStones = 10, 40 // [min, max)
	minRooms, maxRooms   = 4, 7   // [min, max)
	roomAnchorLo         = 2
	roomAnchorHi         = 25
	roomInterior         = 9
	scatterLo            = 2
	scatterHi            = 35
	spawnLo              = 4
	spawnHi              = 33
)

// ExitPos is the fixed location of the level exit.
var ExitPos = Position{X: 18, Y: 18}

// Generate builds the level for seed.
//
// Postcondition: identical seeds yield identical maps; the outer ring is
// Border, ExitPos holds Exit, the player stands on Empty, and DiamondCount
// diamonds are recorded.
func Generate(seed uint32) *Map {
	return GenerateFrom(dice.NewSeededSource(seed))
}

// GenerateFrom builds a level drawing every random choice from src.
//
// Precondition: src must be non-nil.
// Postcondition: as for Generate, with determinism tied to src.
func GenerateFrom(src dice.Source) *Map {
	m := NewMap(Wall, Position{})

	scatterStones(m, src)
	centers := carveRooms(m, src)
	connectRooms(m, src, centers)
	placeDiamonds(m, src)
	placeExit(m, centers)
	m.PlacePlayer(pickSpawn(m, src))

	return m
}

func scatterStones(m *Map, src dice.Source) {
	n := dice.Range(src, minStones, maxStones)
	for i := 0; i < n; i++ {
		x := dice.Range(src, scatterLo, scatterHi)
		y := dice.Range(src, scatterLo, scatterHi)
		m.SetTile(Position{X: x, Y: y}, Stone)
	}
}

// carveRooms carves every room and returns the room centers in carving order.
// Centers are stamped Border once all rooms are carved; corridors, diamonds
// and the exit may empty them again later.
func carveRooms(m *Map, src dice.Source) []Position {
	n := dice.Range(src, minRooms, maxRooms)
	centers := make([]Position, 0, n)
	for i := 0; i < n; i++ {
		top := dice.Range(src, roomAnchorLo, roomAnchorHi)
		left := dice.Range(src, roomAnchorLo, roomAnchorHi)
		centers = append(centers, Position{X: left + 5, Y: top + 5})

		for y := 1; y <= roomInterior; y++ {
			for x := 1; x <= roomInterior; x++ {
				m.SetTile(Position{X: left + x, Y: top + y}, Empty)
			}
		}
		if dice.Coin(src) {
			carveV(m, top+2, top+8, left)
			carveV(m, top+2, top+8, left+10)
		}
		if dice.Coin(src) {
			carveH(m, left+2, left+8, top)
			carveH(m, left+2, left+8, top+10)
		}
	}
	for _, c := range centers {
		m.SetTile(c, Border)
	}
	return centers
}

func connectRooms(m *Map, src dice.Source, centers []Position) {
	for i := range centers {
		for j := i + 1; j < len(centers); j++ {
			if dice.Coin(src) {
				carveCorridor(m, centers[i], centers[j])
			}
		}
	}
}

func placeDiamonds(m *Map, src dice.Source) {
	for i := 0; i < DiamondCount; i++ {
		x := dice.Range(src, scatterLo, scatterHi)
		y := dice.Range(src, scatterLo, scatterHi)
		d := Position{X: x, Y: y}

		if kind, _ := m.TileAt(d); kind != Empty {
			if enclosed(m, d) {
				carveBlock(m, d)
			} else {
				m.SetTile(d, Empty)
			}
		}
		m.AddDiamond(d)
	}
}

// enclosed reports whether none of p's four neighbors is Empty.
func enclosed(m *Map, p Position) bool {
	for _, d := range []Direction{Up, Left, Down, Right} {
		if kind, _ := m.TileAt(p.Moved(d)); kind == Empty {
			return false
		}
	}
	return true
}

func placeExit(m *Map, centers []Position) {
	if kind, _ := m.TileAt(ExitPos); kind != Empty && len(centers) > 0 {
		carveCorridor(m, nearest(centers, ExitPos), ExitPos)
	}
	carveBlock(m, ExitPos)
	m.SetTile(ExitPos, Exit)
}

// nearest returns the center closest to target; the first one wins ties.
//
// Precondition: centers is non-empty.
func nearest(centers []Position, target Position) Position {
	best := centers[0]
	bestDist := distance(best, target)
	for _, c := range centers[1:] {
		if d := distance(c, target); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func distance(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// pickSpawn samples [spawnLo, spawnHi)² for an Empty tile. After
// MaxSpawnAttempts misses it falls back to the first Empty cell of the same
// square in row-major order; the exit block guarantees one exists.
func pickSpawn(m *Map, src dice.Source) Position {
	for i := 0; i < MaxSpawnAttempts; i++ {
		p := Position{
			X: dice.Range(src, spawnLo, spawnHi),
			Y: dice.Range(src, spawnLo, spawnHi),
		}
		if kind, _ := m.TileAt(p); kind == Empty {
			return p
		}
	}
	for y := spawnLo; y < spawnHi; y++ {
		for x := spawnLo; x < spawnHi; x++ {
			p := Position{X: x, Y: y}
			if kind, _ := m.TileAt(p); kind == Empty {
				return p
			}
		}
	}
	panic("dungeon: no empty spawn cell after exit carving")
}
