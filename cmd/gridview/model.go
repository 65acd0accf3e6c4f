package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
)

const (
	trailStepMs  = 25
	trailDecayMs = 400
)

// Trail is one animated cell along the latest smoothed path
type Trail struct {
	x, y      int
	intensity float64
	timestamp time.Time
}

// Editor is the viewer state independent of the terminal
type Editor struct {
	grid             *navigation.Grid
	cache            *navigation.RouteCache
	opts             []navigation.Option
	log              *zap.Logger
	cursorX, cursorY int
	start, goal      navigation.Position
	result           navigation.Result
	showRaw          bool
	seed             int64
	trails           []Trail
}

func NewEditor(g *navigation.Grid, start, goal navigation.Position, cache *navigation.RouteCache, log *zap.Logger, opts ...navigation.Option) *Editor {
	e := &Editor{
		grid:    g,
		cache:   cache,
		opts:    opts,
		log:     log,
		start:   start,
		goal:    goal,
		cursorX: start.X,
		cursorY: start.Y,
		showRaw: true,
	}
	e.solve(time.Now())
	return e
}

// solve recomputes the route and restarts the trail animation
func (e *Editor) solve(now time.Time) navigation.Status {
	e.result = e.cache.Solve(e.grid, e.start, e.goal, e.opts...)
	e.log.Debug("route",
		zap.Stringer("start", e.start),
		zap.Stringer("goal", e.goal),
		zap.String("status", e.result.Status.String()),
		zap.Int("cost", e.result.Cost),
		zap.Int("expanded", e.result.Expanded))

	e.trails = e.trails[:0]
	for i, p := range e.result.Smooth.Cells() {
		e.trails = append(e.trails, Trail{
			x:         p.X,
			y:         p.Y,
			intensity: 1.0,
			timestamp: now.Add(time.Duration(i) * trailStepMs * time.Millisecond),
		})
	}
	return e.result.Status
}

// updateTrails fades trail cells that have been lit, dropping spent ones
func (e *Editor) updateTrails(now time.Time) {
	kept := e.trails[:0]
	for _, t := range e.trails {
		elapsed := now.Sub(t.timestamp)
		switch {
		case elapsed < 0:
			kept = append(kept, t)
		case elapsed < trailDecayMs*time.Millisecond:
			t.intensity = 1.0 - float64(elapsed)/float64(trailDecayMs*time.Millisecond)
			kept = append(kept, t)
		}
	}
	e.trails = kept
}

func (e *Editor) cursor() navigation.Position { return navigation.Pos(e.cursorX, e.cursorY) }

// Move shifts the cursor, clamped to the grid
func (e *Editor) Move(dx, dy int) {
	e.cursorX = min(max(e.cursorX+dx, 0), e.grid.Width()-1)
	e.cursorY = min(max(e.cursorY+dy, 0), e.grid.Height()-1)
}

// Toggle flips the wall under the cursor. Endpoints stay open.
func (e *Editor) Toggle(now time.Time) navigation.Status {
	p := e.cursor()
	if p == e.start || p == e.goal {
		return e.result.Status
	}
	e.grid.Set(p, e.grid.Walkable(p))
	return e.solve(now)
}

func (e *Editor) SetStart(now time.Time) navigation.Status {
	e.start = e.cursor()
	e.grid.Set(e.start, false)
	return e.solve(now)
}

func (e *Editor) SetGoal(now time.Time) navigation.Status {
	e.goal = e.cursor()
	e.grid.Set(e.goal, false)
	return e.solve(now)
}

// Clear opens every cell
func (e *Editor) Clear(now time.Time) navigation.Status {
	for y := 0; y < e.grid.Height(); y++ {
		for x := 0; x < e.grid.Width(); x++ {
			e.grid.Set(navigation.Pos(x, y), false)
		}
	}
	return e.solve(now)
}

// Regenerate replaces the grid with a new layout of the same size
func (e *Editor) Regenerate(kind maze.Kind, now time.Time) navigation.Status {
	e.seed++
	res := maze.Generate(maze.Config{
		Kind:     kind,
		Width:    e.grid.Width(),
		Height:   e.grid.Height(),
		Braiding: 0.3,
		Density:  0.3,
		Seed:     e.seed,
	})
	e.grid = res.Grid
	e.start, e.goal = res.Start, res.End
	e.cursorX, e.cursorY = e.start.X, e.start.Y
	e.Move(0, 0)
	return e.solve(now)
}
