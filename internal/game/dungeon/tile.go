package dungeon

// TileKind identifies the terrain of one cell.
type TileKind uint8

const (
	Empty TileKind = iota
	Wall
	Stone
	Border
	Exit
)

// Glyph returns the character used for the kind in the map representation.
func (k TileKind) Glyph() byte {
	switch k {
	case Empty:
		return ' '
	case Wall:
		return 'M'
	case Stone:
		return 'P'
	case Border:
		return 'B'
	case Exit:
		return 'S'
	}
	return '?'
}

func (k TileKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Stone:
		return "stone"
	case Border:
		return "border"
	case Exit:
		return "exit"
	}
	return "unknown"
}

// Walkable reports whether the player may stand on the kind.
func (k TileKind) Walkable() bool {
	return k == Empty || k == Exit
}

// Diggable reports whether a move into the kind digs it out instead.
func (k TileKind) Diggable() bool {
	return k == Wall
}

// Glyphs used by the map representation for entities.
const (
	PlayerGlyph  byte = 'J'
	DiamondGlyph byte = 'D'
)
