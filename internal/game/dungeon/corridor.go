package dungeon

// carveH empties the row y from x1 to x2 inclusive, in either order.
func carveH(m *Map, x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		m.SetTile(Position{X: x, Y: y}, Empty)
	}
}

// carveV empties the column x from y1 to y2 inclusive, in either order.
func carveV(m *Map, y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		m.SetTile(Position{X: x, Y: y}, Empty)
	}
}

// carveCorridor digs an L-shaped tunnel: along from's row to to's column,
// then along to's column back to from's row.
func carveCorridor(m *Map, from, to Position) {
	carveH(m, from.X, to.X, from.Y)
	carveV(m, from.Y, to.Y, to.X)
}

// carveBlock empties the 3×3 block centered on c.
func carveBlock(m *Map, c Position) {
	for y := c.Y - 1; y <= c.Y+1; y++ {
		for x := c.X - 1; x <= c.X+1; x++ {
			m.SetTile(Position{X: x, Y: y}, Empty)
		}
	}
}
