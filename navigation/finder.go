package navigation

import (
	"go.uber.org/zap"
)

type cellState uint8

const (
	cellUnvisited cellState = iota
	cellFinalized           // Holds a best-known distance, may be (re)expanded
	cellConsumed            // Traversed by a jump; stops rays that cannot reach it cheaper
)

// Finder runs jump point search backward from the goal
// A Finder is not safe for concurrent use; the Grid it reads may be shared
type Finder struct {
	grid          *Grid
	log           *zap.Logger
	trace         bool
	maxExpansions int

	// Per-cell records, reallocated per query
	state []cellState
	dist  []int
	dirs  []int8

	open minHeap

	start, goal Position
	expanded    int
	exhausted   bool
}

// NewFinder creates a finder bound to g
func NewFinder(g *Grid, opts ...Option) *Finder {
	o := buildOptions(opts)
	return &Finder{
		grid:          g,
		log:           o.Logger,
		trace:         o.Logger.Core().Enabled(zap.DebugLevel),
		maxExpansions: o.MaxExpansions,
	}
}

// Expanded returns the number of nodes expanded by the last query
func (f *Finder) Expanded() int { return f.expanded }

// Exhausted reports whether the last query stopped on the expansion budget
func (f *Finder) Exhausted() bool { return f.exhausted }

// Find returns the turn points of a shortest route from start to goal
// The result is empty when no route exists or an endpoint is outside the grid or blocked
func (f *Finder) Find(start, goal Position) Path {
	f.reset(start, goal)
	if f.grid.Validate(start, goal) != nil {
		return nil
	}

	startIdx := f.grid.Index(start)
	f.relax(goal, 0, DirTarget)

	for len(f.open) > 0 {
		e := f.open.pop()
		if f.state[e.node] != cellFinalized || f.dist[e.node] != e.dist {
			continue // Stale entry
		}
		if e.node == startIdx {
			break
		}
		if f.maxExpansions > 0 && f.expanded >= f.maxExpansions {
			f.exhausted = true
			return nil
		}
		f.expanded++

		pos := f.grid.At(e.node)
		if f.trace {
			f.log.Debug("expand",
				zap.Stringer("pos", pos),
				zap.Int("dist", e.dist),
				zap.Int("priority", e.priority),
				zap.Int("open", len(f.open)))
		}

		for dir := int8(0); dir < DirCount; dir++ {
			if isDiagonal(dir) {
				f.diagonal(pos, e.dist, dir)
			} else {
				f.straight(pos, e.dist, dir)
			}
		}
	}

	if f.state[startIdx] != cellFinalized {
		return nil
	}
	return f.reconstruct()
}

func (f *Finder) reset(start, goal Position) {
	size := f.grid.width * f.grid.height
	f.state = make([]cellState, size)
	f.dist = make([]int, size)
	f.dirs = make([]int8, size)
	for i := range f.dirs {
		f.dirs[i] = DirNone
	}
	if f.open == nil {
		f.open = make(minHeap, 0, size/4+1)
	}
	f.open.reset()
	f.start, f.goal = start, goal
	f.expanded = 0
	f.exhausted = false
}

// heuristic is the octile estimate toward start under 2/3 costs
func (f *Finder) heuristic(p Position) int {
	return octile(p, f.start)
}

// relax records dist/dir at p if it improves on the current record
func (f *Finder) relax(p Position, dist int, dir int8) bool {
	idx := f.grid.Index(p)
	if f.state[idx] == cellFinalized && f.dist[idx] <= dist {
		return false
	}
	f.state[idx] = cellFinalized
	f.dist[idx] = dist
	f.dirs[idx] = dir
	f.open.push(heapEntry{node: idx, dist: dist, priority: dist + f.heuristic(p)})
	return true
}

// land relaxes the stopping cell of a ray and tombstones the cells between
func (f *Finder) land(from Position, fromDist int, to Position, toDist int, dir int8) {
	if !f.relax(to, toDist, dir) {
		return
	}
	v := DirVectors[dir]
	step := dirCosts[dir]
	d := fromDist
	for p := from.Add(v); p != to; p = p.Add(v) {
		d += step
		idx := f.grid.Index(p)
		f.state[idx] = cellConsumed
		f.dist[idx] = d
		f.dirs[idx] = dir
	}
}

// straight casts an orthogonal ray and records at most one successor
// A consumed cell ends the ray unless the ray reaches it cheaper, in which case it becomes a jump point
func (f *Finder) straight(from Position, dist int, dir int8) {
	v := DirVectors[dir]
	fromDist := dist
	pos := from
	for {
		pos = pos.Add(v)
		dist += CostOrthogonal
		if !f.grid.Walkable(pos) {
			return
		}
		idx := f.grid.Index(pos)
		if f.state[idx] == cellConsumed && f.dist[idx] <= dist {
			return
		}
		if pos == f.start || f.state[idx] != cellUnvisited || f.forcedStraight(pos, v) {
			f.land(from, fromDist, pos, dist, dir)
			return
		}
	}
}

// diagonal casts a diagonal ray, also stopping where an axis probe from the cell would stop
func (f *Finder) diagonal(from Position, dist int, dir int8) {
	v := DirVectors[dir]
	xdir, ydir := v.XOnly().Dir(), v.YOnly().Dir()
	fromDist := dist
	pos := from
	for {
		pos = pos.Add(v)
		dist += CostDiagonal
		if !f.grid.Walkable(pos) {
			return
		}
		idx := f.grid.Index(pos)
		if f.state[idx] == cellConsumed && f.dist[idx] <= dist {
			return
		}
		if pos == f.start || f.state[idx] != cellUnvisited ||
			f.forcedDiagonal(pos, v) || f.probe(pos, xdir) || f.probe(pos, ydir) {
			f.land(from, fromDist, pos, dist, dir)
			return
		}
	}
}

// probe reports whether an orthogonal ray from p would stop somewhere, without side effects
func (f *Finder) probe(from Position, dir int8) bool {
	v := DirVectors[dir]
	pos := from
	for {
		pos = pos.Add(v)
		if !f.grid.Walkable(pos) {
			return false
		}
		if pos == f.start || f.state[f.grid.Index(pos)] != cellUnvisited || f.forcedStraight(pos, v) {
			return true
		}
	}
}

// forcedStraight: a side is blocked at pos and open one step further along v
func (f *Finder) forcedStraight(pos, v Position) bool {
	side := v.Swap()
	return (!f.grid.Walkable(pos.Sub(side)) && f.grid.Walkable(pos.Sub(side).Add(v))) ||
		(!f.grid.Walkable(pos.Add(side)) && f.grid.Walkable(pos.Add(side).Add(v)))
}

// forcedDiagonal: an axis neighbour behind pos is blocked while the cell past it is open
func (f *Finder) forcedDiagonal(pos, v Position) bool {
	x, y := v.XOnly(), v.YOnly()
	return (!f.grid.Walkable(pos.Sub(x)) && f.grid.Walkable(pos.Sub(x).Add(y))) ||
		(!f.grid.Walkable(pos.Sub(y)) && f.grid.Walkable(pos.Sub(y).Add(x)))
}

// reconstruct walks provenance from start to goal, keeping only cells where the code changes
func (f *Finder) reconstruct() Path {
	path := Path{f.start}
	if f.start == f.goal {
		return path
	}

	cur := f.start
	limit := len(f.dirs)
	for steps := 0; steps <= limit; steps++ {
		dir := f.dirs[f.grid.Index(cur)]
		if dir < 0 {
			f.anomaly("cell without provenance", cur, path)
			return path
		}
		next := cur.Sub(DirVectors[dir])
		if !f.grid.Walkable(next) {
			f.anomaly("provenance leads into blocked cell", next, path)
			return path
		}
		cur = next
		if cur == f.goal {
			return append(path, cur)
		}
		if f.dirs[f.grid.Index(cur)] != dir {
			path = append(path, cur)
		}
	}
	f.anomaly("provenance walk exceeded grid area", cur, path)
	return path
}

func (f *Finder) anomaly(msg string, at Position, partial Path) {
	f.log.Error(msg,
		zap.Stringer("at", at),
		zap.Stringer("start", f.start),
		zap.Stringer("goal", f.goal),
		zap.Int("partial_len", len(partial)))
}
