package navigation

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrDimensions  = errors.New("invalid grid dimensions")
	ErrMaskSize    = errors.New("mask size does not match dimensions")
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrBlocked     = errors.New("position is blocked")
)

// Grid is a dense obstacle mask: zero bytes are walkable, anything else is blocked
// Searches only read the mask; editors mutate it between queries via Set
type Grid struct {
	width, height int
	cells         []byte
}

// NewGrid wraps mask without copying, len(mask) must equal width*height
func NewGrid(width, height int, mask []byte) (*Grid, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(mask) != width*height {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrMaskSize, len(mask), width*height)
	}
	return &Grid{width: width, height: height, cells: mask}, nil
}

// NewEmptyGrid allocates an all-walkable grid
func NewEmptyGrid(width, height int) (*Grid, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	return &Grid{width: width, height: height, cells: make([]byte, width*height)}, nil
}

// checkDimensions rejects non-positive sides and areas that overflow int
func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > math.MaxInt/height {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	return nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Mask exposes the backing buffer
func (g *Grid) Mask() []byte { return g.cells }

// Index returns the row-major offset of p, caller checks bounds
func (g *Grid) Index(p Position) int {
	return p.Y*g.width + p.X
}

// At converts a row-major offset back to a position
func (g *Grid) At(idx int) Position {
	return Position{idx % g.width, idx / g.width}
}

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Walkable reports whether p is inside the grid and not blocked
func (g *Grid) Walkable(p Position) bool {
	return g.InBounds(p) && g.cells[p.Y*g.width+p.X] == 0
}

// Set marks a cell blocked or walkable, out of bounds is ignored
func (g *Grid) Set(p Position, blocked bool) {
	if !g.InBounds(p) {
		return
	}
	if blocked {
		g.cells[g.Index(p)] = 1
	} else {
		g.cells[g.Index(p)] = 0
	}
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	cells := make([]byte, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// Validate reports why an endpoint pair cannot be queried
func (g *Grid) Validate(start, goal Position) error {
	for _, p := range [2]Position{start, goal} {
		if !g.InBounds(p) {
			return fmt.Errorf("%w: %v in %dx%d", ErrOutOfBounds, p, g.width, g.height)
		}
		if !g.Walkable(p) {
			return fmt.Errorf("%w: %v", ErrBlocked, p)
		}
	}
	return nil
}

// Fingerprint identifies the grid contents, blocked values are normalised to 1
func (g *Grid) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	var dims [8]byte
	dims[0], dims[1], dims[2], dims[3] = byte(g.width>>24), byte(g.width>>16), byte(g.width>>8), byte(g.width)
	dims[4], dims[5], dims[6], dims[7] = byte(g.height>>24), byte(g.height>>16), byte(g.height>>8), byte(g.height)
	h.Write(dims[:])

	row := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] != 0 {
				row[x] = 1
			} else {
				row[x] = 0
			}
		}
		h.Write(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}
