package navigation

// LineOfSight reports whether every cell the segment a-b grazes is walkable
// Intermediate samples are taken at each unit of the dominant axis and rounded both down and
// up, so a line passing exactly between two cells needs both of them free
// Endpoints are not tested
func (g *Grid) LineOfSight(a, b Position) bool {
	d := b.Sub(a)
	step := max(abs(d.X), abs(d.Y))
	for i := 1; i < step; i++ {
		lo := Position{a.X + floorDiv(d.X*i, step), a.Y + floorDiv(d.Y*i, step)}
		if !g.Walkable(lo) {
			return false
		}
		hi := Position{a.X + ceilDiv(d.X*i, step), a.Y + ceilDiv(d.Y*i, step)}
		if hi != lo && !g.Walkable(hi) {
			return false
		}
	}
	return true
}

// LinePoints rasterises a-b with one cell per unit of the dominant axis, both ends included
func LinePoints(a, b Position) []Position {
	d := b.Sub(a)
	step := max(abs(d.X), abs(d.Y))
	pts := make([]Position, 0, step+1)
	for i := 0; i < step; i++ {
		pts = append(pts, Position{a.X + roundDiv(d.X*i, step), a.Y + roundDiv(d.Y*i, step)})
	}
	return append(pts, b)
}
