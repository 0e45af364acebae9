package dungeon

import "strings"

// Map is the terrain of one level plus the player and the remaining diamonds.
//
// Invariant: every in-bounds position has a tile; the player stands on an
// Empty or Exit tile.
type Map struct {
	terrain  [Size][Size]TileKind
	player   Position
	diamonds []Position
}

// NewMap builds a map filled with kind, with the outer ring set to Border and
// the player at spawn. Mostly useful for fixtures.
//
// Postcondition: the ring x=0, x=Size-1, y=0, y=Size-1 is Border.
func NewMap(fill TileKind, spawn Position) *Map {
	m := &Map{player: spawn}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if x == 0 || y == 0 || x == Size-1 || y == Size-1 {
				m.terrain[y][x] = Border
			} else {
				m.terrain[y][x] = fill
			}
		}
	}
	return m
}

// TileAt returns the tile at p and whether p is on the map.
func (m *Map) TileAt(p Position) (TileKind, bool) {
	if !p.InBounds() {
		return 0, false
	}
	return m.terrain[p.Y][p.X], true
}

// SetTile overwrites the tile at p. Out-of-bounds positions are ignored.
func (m *Map) SetTile(p Position, k TileKind) {
	if p.InBounds() {
		m.terrain[p.Y][p.X] = k
	}
}

// PlayerPos returns the player's current position.
func (m *Map) PlayerPos() Position {
	return m.player
}

// PlacePlayer moves the player to p without any terrain check.
func (m *Map) PlacePlayer(p Position) {
	m.player = p
}

// MovePlayer moves the player one cell in direction d.
func (m *Map) MovePlayer(d Direction) {
	m.player = m.player.Moved(d)
}

// AddDiamond appends a diamond at p.
func (m *Map) AddDiamond(p Position) {
	m.diamonds = append(m.diamonds, p)
}

// Diamonds returns a copy of the remaining diamond positions, in placement order.
func (m *Map) Diamonds() []Position {
	out := make([]Position, len(m.diamonds))
	copy(out, m.diamonds)
	return out
}

// DiamondCount returns the number of diamonds left on the map.
func (m *Map) DiamondCount() int {
	return len(m.diamonds)
}

// Dig turns the tile at p into Empty.
func (m *Map) Dig(p Position) {
	m.SetTile(p, Empty)
}

// PickUpDiamond removes the first diamond under the player.
//
// Postcondition: returns true iff exactly one diamond was removed.
func (m *Map) PickUpDiamond() bool {
	for i, d := range m.diamonds {
		if d == m.player {
			m.diamonds = append(m.diamonds[:i], m.diamonds[i+1:]...)
			return true
		}
	}
	return false
}

// Rows returns the map representation split into Size rows of Size characters.
func (m *Map) Rows() []string {
	rows := make([]string, Size)
	var b strings.Builder
	for y := 0; y < Size; y++ {
		b.Reset()
		for x := 0; x < Size; x++ {
			b.WriteByte(m.glyphAt(Position{X: x, Y: y}))
		}
		rows[y] = b.String()
	}
	return rows
}

// Repr returns the row-major Size×Size character grid sent in reply to MAP.
// The player glyph wins over a diamond on the same cell.
func (m *Map) Repr() string {
	var b strings.Builder
	b.Grow(Size * Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b.WriteByte(m.glyphAt(Position{X: x, Y: y}))
		}
	}
	return b.String()
}

func (m *Map) glyphAt(p Position) byte {
	if m.player == p {
		return PlayerGlyph
	}
	for _, d := range m.diamonds {
		if d == p {
			return DiamondGlyph
		}
	}
	return m.terrain[p.Y][p.X].Glyph()
}
