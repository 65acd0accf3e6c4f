package navigation

// Direction codes used as per-cell provenance
// Index into DirVectors: N=0, NE=1, E=2, SE=3, S=4, SW=5, W=6, NW=7
const (
	DirNone   int8 = -1 // Never reached
	DirTarget int8 = -2 // Search seed (the goal cell)
	DirN      int8 = 0
	DirNE     int8 = 1
	DirE      int8 = 2
	DirSE     int8 = 3
	DirS      int8 = 4
	DirSW     int8 = 5
	DirW      int8 = 6
	DirNW     int8 = 7
	DirCount  int8 = 8
)

// Direction vectors matching DirN..DirNW, y grows downward
var DirVectors = [8]Position{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Opposite direction lookup
var DirOpposite = [8]int8{
	DirS, DirSW, DirW, DirNW,
	DirN, DirNE, DirE, DirSE,
}

// Step costs: orthogonal = 2, diagonal = 3
const (
	CostOrthogonal = 2
	CostDiagonal   = 3
)

// Per-direction costs matching DirVectors index order
var dirCosts = [8]int{
	CostOrthogonal, CostDiagonal, CostOrthogonal, CostDiagonal,
	CostOrthogonal, CostDiagonal, CostOrthogonal, CostDiagonal,
}

// signToDir maps (sy+1)*3+(sx+1) to a direction code
var signToDir = [9]int8{
	DirNW, DirN, DirNE,
	DirW, DirNone, DirE,
	DirSW, DirS, DirSE,
}

// Vector returns the unit offset for a direction code, zero for DirNone/DirTarget
func Vector(dir int8) Position {
	if dir < 0 || dir >= DirCount {
		return Position{}
	}
	return DirVectors[dir]
}

// isDiagonal reports whether the direction code moves on both axes
func isDiagonal(dir int8) bool {
	return dir >= 0 && dir&1 == 1
}

// octile is the exact 2/3 cost of an unobstructed move between two cells
func octile(a, b Position) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx < dy {
		return dx + 2*dy
	}
	return 2*dx + dy
}
