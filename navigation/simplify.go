package navigation

import (
	"math"

	"go.uber.org/zap"
)

// Simplifier reduces a turn-point path to fewer, longer segments that keep line of sight
// Not safe for concurrent use
type Simplifier struct {
	grid *Grid
	log  *zap.Logger

	// Secondary search state, reused across runs
	points []Position
	index  map[Position]int
	dist   []int
	prev   []int
	open   minHeap
}

// NewSimplifier creates a simplifier bound to g
func NewSimplifier(g *Grid, opts ...Option) *Simplifier {
	o := buildOptions(opts)
	return &Simplifier{
		grid:  g,
		log:   o.Logger,
		index: make(map[Position]int),
	}
}

// Passes after the first are rerun until the output no longer changes
const maxSimplifyPasses = 4

// Simplify merges monotone runs of path; diagonal runs are shortened through obstacle corners
func (s *Simplifier) Simplify(path Path) Path {
	switch len(path) {
	case 0:
		return nil
	case 1:
		return Path{path[0]}
	}

	out := s.pass(path)
	for i := 1; i < maxSimplifyPasses; i++ {
		next := s.pass(out)
		if next.Equal(out) {
			break
		}
		out = next
	}
	return out
}

// pass reduces every run of path once
func (s *Simplifier) pass(path Path) Path {
	out := make(Path, 0, len(path))
	anchor := path[0]
	i := 1
	for i < len(path) {
		run := Path{anchor}
		var d Position
		j := i
		for ; j < len(path); j++ {
			step := path[j].Sub(run[len(run)-1]).Sign()
			if step.X*d.X < 0 || step.Y*d.Y < 0 {
				break
			}
			if d.X == 0 {
				d.X = step.X
			}
			if d.Y == 0 {
				d.Y = step.Y
			}
			run = append(run, path[j])
		}

		emitted, ok := s.reduce(run, d)
		for _, p := range emitted {
			out = appendPoint(out, p)
		}

		end := run[len(run)-1]
		last := emitted[len(emitted)-1]
		if !ok || last == run[0] {
			// Nothing new past the run start: continue from the raw run end
			anchor = end
			i = j
		} else {
			// Continue from the last corner, re-entering the raw path at the run end
			anchor = last
			i = j - 1
		}
	}
	return appendPoint(out, path[len(path)-1])
}

// reduce returns the points to emit for run, first = run start, run end excluded
// ok is false when the corner search found nothing and the raw points were returned
func (s *Simplifier) reduce(run Path, d Position) (Path, bool) {
	if len(run) == 2 || d.X == 0 || d.Y == 0 {
		return Path{run[0]}, true
	}

	s.collect(run, d)
	if pts, found := s.search(run[0], run[len(run)-1], d); found {
		return pts, true
	}

	s.log.Debug("corner search failed, keeping raw run",
		zap.Stringer("begin", run[0]),
		zap.Stringer("end", run[len(run)-1]),
		zap.Int("candidates", len(s.points)))
	return run[:len(run)-1], false
}

// collect fills the candidate list: the run end first, obstacle corners in the bounding
// rectangle scanned from the end back toward the start, then the run's own points
func (s *Simplifier) collect(run Path, d Position) {
	s.points = s.points[:0]
	clear(s.index)

	begin, end := run[0], run[len(run)-1]
	s.addCandidate(end)

	lo, hi := begin, begin
	for _, p := range run[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}

	dx, dy := d.XOnly(), d.YOnly()
	for y := end.Y; y >= lo.Y && y <= hi.Y; y -= d.Y {
		for x := end.X; x >= lo.X && x <= hi.X; x -= d.X {
			c := Position{x, y}
			if !s.grid.Walkable(c) || !s.grid.Walkable(c.Add(d)) {
				continue
			}
			if !s.grid.Walkable(c.Add(dx)) || !s.grid.Walkable(c.Add(dy)) {
				s.addCandidate(c)
				s.addCandidate(c.Add(d))
			}
		}
	}

	for _, p := range run {
		s.addCandidate(p)
	}
}

func (s *Simplifier) addCandidate(p Position) {
	if _, ok := s.index[p]; ok {
		return
	}
	s.index[p] = len(s.points)
	s.points = append(s.points, p)
}

// search runs A* over the candidates from end back to begin, edges limited to forward,
// unobstructed segments and weighted by Euclidean length x100
func (s *Simplifier) search(begin, end Position, d Position) (Path, bool) {
	n := len(s.points)
	s.dist = resize(s.dist, n)
	s.prev = resize(s.prev, n)
	for k := range s.dist {
		s.dist[k] = math.MaxInt
		s.prev[k] = -1
	}
	s.open.reset()

	endIdx, beginIdx := s.index[end], s.index[begin]
	s.dist[endIdx] = 0
	s.open.push(heapEntry{node: endIdx, dist: 0, priority: euclid(end, begin), tie: s.grid.Index(end)})

	for len(s.open) > 0 {
		e := s.open.pop()
		if e.dist != s.dist[e.node] {
			continue
		}
		if e.node == beginIdx {
			return s.unwind(beginIdx, endIdx), true
		}

		from := s.points[e.node]
		for k, c := range s.points {
			if k == e.node {
				continue
			}
			diff := from.Sub(c)
			if diff.X*d.X < 0 || diff.Y*d.Y < 0 {
				continue
			}
			if !s.grid.LineOfSight(from, c) {
				continue
			}
			nd := e.dist + euclid(from, c)
			if nd >= s.dist[k] {
				continue
			}
			s.dist[k] = nd
			s.prev[k] = e.node
			s.open.push(heapEntry{node: k, dist: nd, priority: nd + euclid(c, begin), tie: s.grid.Index(c)})
		}
	}
	return nil, false
}

// unwind follows provenance from begin toward end, keeping begin and every point where the
// heading changes
func (s *Simplifier) unwind(beginIdx, endIdx int) Path {
	pts := Path{s.points[beginIdx]}
	cur := beginIdx
	for {
		next := s.prev[cur]
		if next < 0 || next == endIdx {
			return pts
		}
		after := s.prev[next]
		if after < 0 {
			return pts
		}
		p, q, r := s.points[cur], s.points[next], s.points[after]
		if q.Sub(p).Cross(r.Sub(q)) != 0 {
			pts = append(pts, q)
		}
		cur = next
	}
}

// euclid is the straight-line distance scaled by 100 and truncated
func euclid(a, b Position) int {
	d := b.Sub(a)
	return int(math.Sqrt(float64(d.X*d.X+d.Y*d.Y)) * 100)
}

func resize(buf []int, n int) []int {
	if cap(buf) < n {
		return make([]int, n)
	}
	return buf[:n]
}
