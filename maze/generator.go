package maze

import (
	"math/rand"
	"time"

	"github.com/lixenwraith/gridpath/navigation"
)

// Kind selects the layout algorithm
type Kind string

const (
	KindMaze    Kind = "maze"    // Recursive backtracker with optional braiding
	KindScatter Kind = "scatter" // Independent random obstacles at Density
)

type Config struct {
	Kind          Kind
	Width, Height int

	// Braiding: 0.0 (perfect maze, tree) to 1.0 (no dead ends).
	// Higher values add cycles. Plaza/pillar constraints take precedence.
	Braiding float64

	// Density: share of blocked cells for KindScatter
	Density float64

	// If true, the outer boundary of a maze is opened
	RemoveBorders bool

	Start *navigation.Position // Optional (nil = automatic)
	End   *navigation.Position // Optional (nil = automatic)
	Seed  int64                // Optional (0 = random)
}

type Result struct {
	Grid       *navigation.Grid
	Start, End navigation.Position
	Seed       int64

	// Corridor is a 4-connected BFS route from Start to End, nil if none exists
	Corridor []navigation.Position
}

// canvas is a row-major mask under construction: true = wall
type canvas struct {
	w, h  int
	walls []bool
}

func newCanvas(w, h int, fill bool) *canvas {
	c := &canvas{w: w, h: h, walls: make([]bool, w*h)}
	if fill {
		for i := range c.walls {
			c.walls[i] = true
		}
	}
	return c
}

func (c *canvas) in(x, y int) bool { return x >= 0 && y >= 0 && x < c.w && y < c.h }

// wall treats out of bounds as wall
func (c *canvas) wall(x, y int) bool { return !c.in(x, y) || c.walls[y*c.w+x] }

func (c *canvas) set(x, y int, wall bool) {
	if c.in(x, y) {
		c.walls[y*c.w+x] = wall
	}
}

func (c *canvas) grid() *navigation.Grid {
	mask := make([]byte, len(c.walls))
	for i, w := range c.walls {
		if w {
			mask[i] = 1
		}
	}
	g, _ := navigation.NewGrid(c.w, c.h, mask)
	return g
}

// Generate creates a grid for benchmarking and fixtures
func Generate(cfg Config) Result {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var res Result
	if cfg.Kind == KindScatter {
		res = scatter(cfg, rng)
	} else {
		res = carve(cfg, rng)
	}
	res.Seed = seed
	return res
}

func scatter(cfg Config, rng *rand.Rand) Result {
	w, h := max(cfg.Width, 1), max(cfg.Height, 1)
	c := newCanvas(w, h, false)
	for i := range c.walls {
		c.walls[i] = rng.Float64() < cfg.Density
	}

	start := resolve(w, h, cfg.Start, 0, 0)
	end := resolve(w, h, cfg.End, w-1, h-1)
	c.set(start.X, start.Y, false)
	c.set(end.X, end.Y, false)

	return Result{Grid: c.grid(), Start: start, End: end, Corridor: corridor(c, start, end)}
}

func carve(cfg Config, rng *rand.Rand) Result {
	// Round down to odd sizes to stay within requested bounds
	w, h := ensureOdd(cfg.Width), ensureOdd(cfg.Height)
	c := newCanvas(w, h, true)

	startDefX, startDefY := 1, 1
	endDefX, endDefY := w-2, h-2
	if cfg.RemoveBorders {
		// Start center, end on the right edge
		startDefX, startDefY = (w/2)|1, (h/2)|1
		endDefX, endDefY = w-1, (h/2)|1
	}
	start := resolve(w, h, cfg.Start, startDefX, startDefY)
	end := resolve(w, h, cfg.End, endDefX, endDefY)

	backtrack(c, start, rng)

	// Borders go before braiding so edge rooms see their outside exits
	if cfg.RemoveBorders {
		stripBorders(c)
	}
	if cfg.Braiding > 0 {
		braid(c, cfg.Braiding, rng)
	}

	if cfg.RemoveBorders {
		c.set(start.X, start.Y, false)
		c.set(end.X, end.Y, false)
	} else {
		forceOpen(c, start)
		forceOpen(c, end)
	}

	return Result{Grid: c.grid(), Start: start, End: end, Corridor: corridor(c, start, end)}
}

var (
	jumps = [4]navigation.Position{{X: 0, Y: -2}, {X: 0, Y: 2}, {X: -2, Y: 0}, {X: 2, Y: 0}}
	ortho = [4]navigation.Position{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
)

// backtrack carves a uniform spanning tree over odd cells
func backtrack(c *canvas, start navigation.Position, rng *rand.Rand) {
	if start.X <= 0 || start.X >= c.w-1 || start.Y <= 0 || start.Y >= c.h-1 {
		start = navigation.Pos(1, 1)
	}
	// Snap to the odd lattice
	start.X |= 1
	start.Y |= 1
	if start.X >= c.w-1 {
		start.X -= 2
	}
	if start.Y >= c.h-1 {
		start.Y -= 2
	}

	stack := []navigation.Position{start}
	c.set(start.X, start.Y, false)

	candidates := make([]navigation.Position, 0, 4)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		candidates = candidates[:0]
		for _, d := range jumps {
			n := cur.Add(d)
			// Keep a one-cell wall border
			if n.X > 0 && n.X < c.w-1 && n.Y > 0 && n.Y < c.h-1 && c.wall(n.X, n.Y) {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[rng.Intn(len(candidates))]
		c.set(cur.X+d.X/2, cur.Y+d.Y/2, false)
		next := cur.Add(d)
		c.set(next.X, next.Y, false)
		stack = append(stack, next)
	}
}

// braid opens a wall at dead ends with the given probability, adding cycles
func braid(c *canvas, probability float64, rng *rand.Rand) {
	candidates := make([]navigation.Position, 0, 4)
	for y := 1; y < c.h-1; y += 2 {
		for x := 1; x < c.w-1; x += 2 {
			if c.wall(x, y) {
				continue
			}

			exits := 0
			for _, d := range ortho {
				if !c.wall(x+d.X, y+d.Y) {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates = candidates[:0]
			for _, jd := range jumps {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if c.in(nx, ny) && !c.wall(nx, ny) && c.wall(wx, wy) && safeToOpen(c, wx, wy) {
					candidates = append(candidates, navigation.Pos(wx, wy))
				}
			}
			if len(candidates) > 0 {
				p := candidates[rng.Intn(len(candidates))]
				c.set(p.X, p.Y, false)
			}
		}
	}
}

// safeToOpen rejects openings that would create a 2x2 plaza or an isolated pillar
func safeToOpen(c *canvas, x, y int) bool {
	open := func(tx, ty int) bool { return c.in(tx, ty) && !c.wall(tx, ty) }

	// Plazas: any 2x2 quadrant containing (x,y) fully open
	for _, q := range [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		if open(x+q[0], y) && open(x, y+q[1]) && open(x+q[0], y+q[1]) {
			return false
		}
	}

	// Pillars: an adjacent wall left without any other wall neighbour
	for _, d := range ortho {
		nx, ny := x+d.X, y+d.Y
		if !c.in(nx, ny) || !c.wall(nx, ny) {
			continue
		}
		links := 0
		for _, d2 := range ortho {
			mx, my := nx+d2.X, ny+d2.Y
			if mx == x && my == y {
				continue
			}
			if c.in(mx, my) && c.wall(mx, my) {
				links++
			}
		}
		if links == 0 {
			return false
		}
	}
	return true
}

func stripBorders(c *canvas) {
	for x := 0; x < c.w; x++ {
		c.set(x, 0, false)
		c.set(x, c.h-1, false)
	}
	for y := 0; y < c.h; y++ {
		c.set(0, y, false)
		c.set(c.w-1, y, false)
	}
}

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// resolve clamps an optional position into the grid
func resolve(w, h int, p *navigation.Position, defX, defY int) navigation.Position {
	if p == nil {
		return navigation.Pos(defX, defY)
	}
	return navigation.Pos(min(max(p.X, 0), w-1), min(max(p.Y, 0), h-1))
}

// forceOpen clears p and, if it is isolated, one interior neighbour
func forceOpen(c *canvas, p navigation.Position) {
	if !c.in(p.X, p.Y) {
		return
	}
	c.set(p.X, p.Y, false)

	for _, d := range ortho {
		if c.in(p.X+d.X, p.Y+d.Y) && !c.wall(p.X+d.X, p.Y+d.Y) {
			return
		}
	}
	for _, d := range ortho {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx > 0 && nx < c.w-1 && ny > 0 && ny < c.h-1 {
			c.set(nx, ny, false)
			return
		}
	}
}

// corridor finds a 4-connected route by BFS
func corridor(c *canvas, start, end navigation.Position) []navigation.Position {
	if c.wall(start.X, start.Y) || c.wall(end.X, end.Y) {
		return nil
	}

	from := make([]int, c.w*c.h)
	for i := range from {
		from[i] = -1
	}
	startIdx := start.Y*c.w + start.X
	from[startIdx] = startIdx

	queue := []int{startIdx}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		cur := navigation.Pos(idx%c.w, idx/c.w)

		if cur == end {
			var path []navigation.Position
			for i := idx; ; i = from[i] {
				path = append(path, navigation.Pos(i%c.w, i/c.w))
				if i == startIdx {
					break
				}
			}
			for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
				path[l], path[r] = path[r], path[l]
			}
			return path
		}

		for _, d := range ortho {
			n := cur.Add(d)
			if c.wall(n.X, n.Y) {
				continue
			}
			ni := n.Y*c.w + n.X
			if from[ni] < 0 {
				from[ni] = idx
				queue = append(queue, ni)
			}
		}
	}
	return nil
}
