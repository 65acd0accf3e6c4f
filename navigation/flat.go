package navigation

import (
	"errors"
	"fmt"
)

var (
	ErrFlatEmpty  = errors.New("flat route is empty")
	ErrFlatLength = errors.New("flat route length mismatch")
)

// Route is the flat entry point: mask is row-major, 0 walkable
// Returns [rawLen, raw x0, y0, ..., smooth x0, y0, ...]; rawLen 0 means no route
// Invalid geometry (bad dimensions, endpoints outside or blocked) is reported as no route
func Route(mask []byte, width, height, beginX, beginY, endX, endY int) []int {
	g, err := NewGrid(width, height, mask)
	if err != nil {
		return []int{0}
	}
	res := Solve(g, Pos(beginX, beginY), Pos(endX, endY))
	return Pack(res.Raw, res.Smooth)
}

// Pack lays out both paths in the flat format
func Pack(raw, smooth Path) []int {
	out := make([]int, 0, 1+2*(len(raw)+len(smooth)))
	out = append(out, len(raw))
	for _, p := range raw {
		out = append(out, p.X, p.Y)
	}
	for _, p := range smooth {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Unpack splits a flat route back into raw and smoothed paths
func Unpack(flat []int) (raw, smooth Path, err error) {
	if len(flat) == 0 {
		return nil, nil, ErrFlatEmpty
	}
	n := flat[0]
	rest := flat[1:]
	if n < 0 || 2*n > len(rest) || (len(rest)-2*n)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: raw length %d, %d values", ErrFlatLength, n, len(rest))
	}
	raw = pairs(rest[:2*n])
	smooth = pairs(rest[2*n:])
	return raw, smooth, nil
}

func pairs(vals []int) Path {
	if len(vals) == 0 {
		return nil
	}
	p := make(Path, len(vals)/2)
	for i := range p {
		p[i] = Position{vals[2*i], vals[2*i+1]}
	}
	return p
}
