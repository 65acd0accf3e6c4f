package navigation

import "strconv"

// Position is an integer grid coordinate or offset
type Position struct {
	X, Y int
}

// Pos is shorthand for Position{X: x, Y: y}
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) Add(q Position) Position { return Position{p.X + q.X, p.Y + q.Y} }
func (p Position) Sub(q Position) Position { return Position{p.X - q.X, p.Y - q.Y} }

// XOnly keeps the x component and zeroes y
func (p Position) XOnly() Position { return Position{p.X, 0} }

// YOnly keeps the y component and zeroes x
func (p Position) YOnly() Position { return Position{0, p.Y} }

// Swap exchanges the axes; for a unit orthogonal direction this yields a perpendicular
func (p Position) Swap() Position { return Position{p.Y, p.X} }

// Sign reduces each component to -1, 0 or 1
func (p Position) Sign() Position { return Position{sign(p.X), sign(p.Y)} }

// Cross returns the z component of the 2-D cross product, zero when parallel
func (p Position) Cross(q Position) int { return p.X*q.Y - p.Y*q.X }

// IsZero reports whether both components are zero
func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 }

func (p Position) String() string {
	return "(" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + ")"
}

// Dir returns the compass code of the sign of p, DirNone for the zero vector
func (p Position) Dir() int8 {
	s := p.Sign()
	return signToDir[(s.Y+1)*3+(s.X+1)]
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// floorDiv and ceilDiv round an exact integer quotient toward -inf / +inf
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// roundDiv rounds half away from zero
func roundDiv(a, b int) int {
	if b < 0 {
		a, b = -a, -b
	}
	if a >= 0 {
		return (2*a + b) / (2 * b)
	}
	return -((-2*a + b) / (2 * b))
}
