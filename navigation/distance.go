package navigation

const costUnreachable = 1<<30 - 1

// DistanceField stores exact cell-by-cell shortest costs toward a target
// Same movement model as Finder: 8-connected, 2 per orthogonal step, 3 per diagonal step,
// diagonal moves need only the destination walkable
type DistanceField struct {
	Width, Height int
	Directions    []int8 // Per-cell direction of the next step toward the target, DirNone if unreachable
	Distances     []int  // Weighted distance to target

	// Target this field was computed for
	Target Position
	Valid  bool

	// Reusable heap buffer across recomputes
	heap minHeap
}

// NewDistanceField creates an empty field for the given dimensions
func NewDistanceField(width, height int) *DistanceField {
	size := width * height
	return &DistanceField{
		Width:      width,
		Height:     height,
		Directions: make([]int8, size),
		Distances:  make([]int, size),
		Target:     Position{-1, -1},
		heap:       make(minHeap, 0, size/4+1),
	}
}

// Direction returns the step toward the target at p, DirNone if invalid or unreachable
func (f *DistanceField) Direction(p Position) int8 {
	if !f.Valid || p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return DirNone
	}
	return f.Directions[p.Y*f.Width+p.X]
}

// Distance returns the weighted distance from p to the target, -1 if unreachable
func (f *DistanceField) Distance(p Position) int {
	if !f.Valid || p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return -1
	}
	d := f.Distances[p.Y*f.Width+p.X]
	if d >= costUnreachable {
		return -1
	}
	return d
}

// Compute runs Dijkstra from target over g, then derives per-cell descent directions
//
// Phase 1: Dijkstra with orthogonal=2, diagonal=3 edge weights
// Phase 2: Per-cell gradient, pick the neighbour with minimum distance plus step cost
func (f *DistanceField) Compute(g *Grid, target Position) {
	if g.Width() != f.Width || g.Height() != f.Height || !g.Walkable(target) {
		f.Valid = false
		return
	}

	w := f.Width
	for i := range f.Distances {
		f.Directions[i] = DirNone
		f.Distances[i] = costUnreachable
	}

	// Phase 1: weighted Dijkstra
	targetIdx := g.Index(target)
	f.Distances[targetIdx] = 0

	f.heap.reset()
	f.heap.push(heapEntry{node: targetIdx, dist: 0, priority: 0})

	for len(f.heap) > 0 {
		e := f.heap.pop()
		if e.dist > f.Distances[e.node] {
			continue // Stale entry
		}

		cur := g.At(e.node)
		for dir := int8(0); dir < DirCount; dir++ {
			next := cur.Add(DirVectors[dir])
			if !g.Walkable(next) {
				continue
			}
			nIdx := next.Y*w + next.X
			nd := e.dist + dirCosts[dir]
			if nd < f.Distances[nIdx] {
				f.Distances[nIdx] = nd
				f.heap.push(heapEntry{node: nIdx, dist: nd, priority: nd})
			}
		}
	}

	// Phase 2: steepest descent toward target
	f.Directions[targetIdx] = DirTarget
	for idx, dist := range f.Distances {
		if dist >= costUnreachable || dist == 0 {
			continue
		}
		p := g.At(idx)

		// A diagonal into a walkable cell from a walkable cell is legal, so the
		// neighbour that realises dist is always found
		best := DirNone
		for dir := int8(0); dir < DirCount; dir++ {
			next := p.Add(DirVectors[dir])
			if !g.Walkable(next) {
				continue
			}
			if f.Distances[next.Y*w+next.X]+dirCosts[dir] == dist {
				best = dir
				break
			}
		}
		f.Directions[idx] = best
	}

	f.Target = target
	f.Valid = true
}

// Walk follows descent directions from p to the target, returning every cell visited
// Returns nil when p is unreachable
func (f *DistanceField) Walk(p Position) []Position {
	if f.Distance(p) < 0 {
		return nil
	}
	cells := []Position{p}
	for steps := 0; p != f.Target && steps < len(f.Distances); steps++ {
		p = p.Add(DirVectors[f.Direction(p)])
		cells = append(cells, p)
	}
	return cells
}
