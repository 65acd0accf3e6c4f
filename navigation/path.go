package navigation

// Path is an ordered list of way-points, first = start, last = goal
type Path []Position

// Cost sums the 2/3 step cost of each segment; exact for turn-point paths whose segments
// are orthogonal or diagonal rays
func (p Path) Cost() int {
	total := 0
	for i := 1; i < len(p); i++ {
		total += octile(p[i-1], p[i])
	}
	return total
}

// Cells expands every segment into the cells it covers, shared endpoints listed once
func (p Path) Cells() []Position {
	if len(p) == 0 {
		return nil
	}
	cells := []Position{p[0]}
	for i := 1; i < len(p); i++ {
		seg := LinePoints(p[i-1], p[i])
		cells = append(cells, seg[1:]...)
	}
	return cells
}

// Equal compares two paths point by point
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// appendPoint appends q unless it repeats the last point
func appendPoint(p Path, q Position) Path {
	if n := len(p); n > 0 && p[n-1] == q {
		return p
	}
	return append(p, q)
}
